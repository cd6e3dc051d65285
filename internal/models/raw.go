package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Scalar holds a loosely typed JSON value (string, number, bool or null).
// The question service is not consistent about types, so a fraction may be
// "100" or 100 and a flag may be true, 1 or "1".
type Scalar struct {
	raw json.RawMessage
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	s.raw = append(s.raw[:0], data...)
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// NewScalar builds a Scalar from a Go value, mostly for tests and fixtures.
func NewScalar(v any) Scalar {
	b, err := json.Marshal(v)
	if err != nil {
		return Scalar{}
	}
	return Scalar{raw: b}
}

// Present reports whether the field was sent with a non-null value.
func (s Scalar) Present() bool {
	t := bytes.TrimSpace(s.raw)
	return len(t) > 0 && !bytes.Equal(t, []byte("null"))
}

// String renders the value as text. Objects carrying a "text" member (the
// Moodle export shape) yield that member.
func (s Scalar) String() string {
	if !s.Present() {
		return ""
	}
	t := bytes.TrimSpace(s.raw)
	switch t[0] {
	case '"':
		var str string
		if err := json.Unmarshal(t, &str); err == nil {
			return str
		}
		return ""
	case '{':
		var obj struct {
			Text *Scalar `json:"text"`
		}
		if err := json.Unmarshal(t, &obj); err == nil && obj.Text != nil {
			return obj.Text.String()
		}
		return ""
	case '[':
		return ""
	}
	return string(t)
}

// IsString reports whether the raw value is a JSON string.
func (s Scalar) IsString() bool {
	t := bytes.TrimSpace(s.raw)
	return len(t) > 0 && t[0] == '"'
}

// Float parses the value as a number, accepting numeric strings.
func (s Scalar) Float() (float64, bool) {
	if !s.Present() {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s.String()), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsTrue reports a JSON literal true.
func (s Scalar) IsTrue() bool {
	return bytes.Equal(bytes.TrimSpace(s.raw), []byte("true"))
}

// IsOne reports a JSON number equal to 1.
func (s Scalar) IsOne() bool {
	t := bytes.TrimSpace(s.raw)
	if len(t) == 0 || t[0] == '"' {
		return false
	}
	f, err := strconv.ParseFloat(string(t), 64)
	return err == nil && f == 1
}

// Truthy accepts true, 1 and "1".
func (s Scalar) Truthy() bool {
	return s.IsTrue() || s.IsOne() || (s.IsString() && s.String() == "1")
}

// RawQuestion is the payload returned by the question service. Every shape
// variant seen upstream has an explicit optional field here; the normalizer
// is the only place that decides between them.
type RawQuestion struct {
	ID   Scalar `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`

	Files []File `json:"files,omitempty"`

	// multichoice, and the options+index truefalse variant
	Options        []string `json:"options,omitempty"`
	CorrectIndexes []int    `json:"correctIndexes,omitempty"`
	CorrectIndex   *int     `json:"correctIndex,omitempty"`
	IsSingle       Scalar   `json:"isSingle,omitempty"`

	// truefalse
	Answers       []RawAnswer `json:"answers,omitempty"`
	CorrectAnswer Scalar      `json:"correctAnswer,omitempty"`
	Answer        Scalar      `json:"answer,omitempty"`
	Correct       Scalar      `json:"correct,omitempty"`
	Solution      Scalar      `json:"solution,omitempty"`

	// matching
	Subquestions []RawPair `json:"subquestions,omitempty"`
	MatchingList []RawPair `json:"matching,omitempty"`
	Pairs        []RawPair `json:"pairs,omitempty"`
	Stems        []string  `json:"stems,omitempty"`
	Choices      []string  `json:"choices,omitempty"`
	Solutions    []int     `json:"solutions,omitempty"`
	Distractors  []string  `json:"distractors,omitempty"`

	// drag-into-text
	Items     []RawDragItem `json:"items,omitempty"`
	Dragboxes []RawDragItem `json:"dragboxes,omitempty"`
	Dragbox   []RawDragItem `json:"dragbox,omitempty"`
	Groups    RawGroups     `json:"groups,omitempty"`
}

type RawAnswer struct {
	Text      Scalar `json:"text"`
	Answer    Scalar `json:"answer"`
	Value     Scalar `json:"value"`
	Fraction  Scalar `json:"fraction"`
	Correct   Scalar `json:"correct"`
	IsCorrect Scalar `json:"iscorrect"`
}

type RawPair struct {
	Text       Scalar `json:"text"`
	Question   Scalar `json:"question"`
	Left       Scalar `json:"left"`
	Prompt     Scalar `json:"prompt"`
	Answer     Scalar `json:"answer"`
	Right      Scalar `json:"right"`
	AnswerText Scalar `json:"answertext"`
}

type RawDragItem struct {
	Label      Scalar `json:"label"`
	ShortLabel Scalar `json:"shortlabel"`
	Name       Scalar `json:"name"`
	Title      Scalar `json:"title"`
	Text       Scalar `json:"text"`
	Value      Scalar `json:"value"`
	Group      Scalar `json:"group"`
	Infinite   Scalar `json:"infinite"`
}

// RawGroups maps group id to its author label. A PHP backend encodes a map
// with keys 0..n-1 as a JSON array, so both shapes are accepted.
type RawGroups map[string]string

func (g *RawGroups) UnmarshalJSON(data []byte) error {
	t := bytes.TrimSpace(data)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		*g = nil
		return nil
	}
	out := RawGroups{}
	if t[0] == '[' {
		var list []Scalar
		if err := json.Unmarshal(t, &list); err != nil {
			return err
		}
		for i, v := range list {
			out[strconv.Itoa(i)] = v.String()
		}
		*g = out
		return nil
	}
	var m map[string]Scalar
	if err := json.Unmarshal(t, &m); err != nil {
		return err
	}
	for k, v := range m {
		out[k] = v.String()
	}
	*g = out
	return nil
}
