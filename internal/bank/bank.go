// Package bank looks questions up by name in a Moodle XML export and
// returns them in the JSON shape the player fetches.
package bank

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/resolver"
)

const defaultImageMime = "image/jpeg"

// segments before each [[n]] marker become draggable items
var itemPattern = regexp.MustCompile(`(.+?)\s*\[\[(\d+)\]\]`)

// ParseError is returned when the bank file cannot be read as XML.
type ParseError struct {
	Details []string
}

func (e *ParseError) Error() string {
	return "failed to parse XML: " + strings.Join(e.Details, "; ")
}

type Item struct {
	Text  string `json:"text"`
	Group string `json:"group"`
}

type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Payload is the JSON served for one question. Fields not used by a type
// are left empty.
type Payload struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Text  string        `json:"text"`
	Files []models.File `json:"files,omitempty"`

	Options        []string `json:"options,omitempty"`
	CorrectIndexes []int    `json:"correctIndexes,omitempty"`
	IsSingle       *bool    `json:"isSingle,omitempty"`

	Groups map[string]string `json:"groups,omitempty"`
	Items  []Item            `json:"items,omitempty"`

	Pairs []Pair `json:"pairs,omitempty"`

	Correct *bool `json:"correct,omitempty"`
}

// Source supplies the raw XML document.
type Source interface {
	Read() ([]byte, error)
}

// FileSource rereads the file on every lookup, so edits to the bank are
// served without a restart.
type FileSource string

func (f FileSource) Read() ([]byte, error) {
	return os.ReadFile(string(f))
}

// BytesSource serves a fixed document.
type BytesSource []byte

func (b BytesSource) Read() ([]byte, error) { return b, nil }

type Bank struct {
	source Source
}

func New(source Source) *Bank {
	return &Bank{source: source}
}

// Lookup finds the question whose <name><text> equals id.
func (b *Bank) Lookup(id string) (*Payload, error) {
	data, err := b.source.Read()
	if err != nil {
		return nil, &ParseError{Details: []string{err.Error()}}
	}
	var doc quizXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Details: []string{err.Error()}}
	}

	for i := range doc.Questions {
		q := &doc.Questions[i]
		if strings.TrimSpace(q.Name.Text) != id {
			continue
		}
		if p, ok := convert(id, q); ok {
			return p, nil
		}
	}
	return nil, qerrors.ErrQuestionNotFound
}

func convert(id string, q *questionXML) (*Payload, bool) {
	text, files := inlineFiles(q.QuestionText)
	p := &Payload{ID: id, Type: q.Type, Text: text, Files: files}

	switch q.Type {
	case "multichoice":
		single := strings.EqualFold(strings.TrimSpace(q.Single), "true")
		p.IsSingle = &single
		p.Options = make([]string, 0, len(q.Answers))
		p.CorrectIndexes = []int{}
		for i, a := range q.Answers {
			p.Options = append(p.Options, strings.TrimSpace(a.Text))
			if fraction(a.Fraction) > 0 {
				p.CorrectIndexes = append(p.CorrectIndexes, i)
			}
		}
	case string(models.WireDragIntoText):
		p.Groups = map[string]string{}
		for _, d := range q.Dragboxes {
			p.Groups[strings.TrimSpace(d.Group)] = strings.TrimSpace(d.Text)
		}
		for _, m := range itemPattern.FindAllStringSubmatch(text, -1) {
			p.Items = append(p.Items, Item{Text: strings.TrimSpace(m[1]), Group: m[2]})
		}
		for _, it := range p.Items {
			if _, ok := p.Groups[it.Group]; !ok {
				p.Groups[it.Group] = "Group " + it.Group
			}
		}
	case "matching":
		for _, s := range q.Subquestions {
			p.Pairs = append(p.Pairs, Pair{Left: strings.TrimSpace(s.Text), Right: strings.TrimSpace(s.Answer.Text)})
		}
	case "truefalse":
		for _, a := range q.Answers {
			if fraction(a.Fraction) > 0 {
				v := strings.EqualFold(strings.TrimSpace(a.Text), "true")
				p.Correct = &v
				break
			}
		}
	default:
		return nil, false
	}
	return p, true
}

// inlineFiles replaces @@PLUGINFILE@@/<name> references with data URIs
// and returns the attachments.
func inlineFiles(qt questionTextXML) (string, []models.File) {
	text := qt.Text
	var files []models.File
	for _, f := range qt.Files {
		data := strings.Join(strings.Fields(f.Data), "")
		uri := fmt.Sprintf("data:%s;base64,%s", sniffMime(data), data)
		text = strings.ReplaceAll(text, resolver.PluginFileMarker+"/"+f.Name, uri)
		files = append(files, models.File{Name: f.Name, Base64: data})
	}
	return text, files
}

func sniffMime(b64 string) string {
	head := b64
	if len(head) > 64 {
		head = head[:64]
	}
	raw, err := base64.StdEncoding.DecodeString(head[:len(head)/4*4])
	if err != nil || len(raw) == 0 {
		return defaultImageMime
	}
	if mime := http.DetectContentType(raw); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return defaultImageMime
}

func fraction(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
