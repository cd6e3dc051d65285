// Package capture holds the per-type answer widgets. A widget owns the
// CapturedAnswer for one question and is discarded when the next loads.
package capture

import (
	"fmt"
	"math/rand"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/resolver"
)

type ActionKind string

const (
	ActionToggle      ActionKind = "toggle"       // multichoice: flip option Index
	ActionChoose      ActionKind = "choose"       // truefalse: pick Value
	ActionSelect      ActionKind = "select"       // matching: Prompt gets Answer
	ActionClearSelect ActionKind = "clear_select" // matching: reset Prompt
	ActionDrop        ActionKind = "drop"         // drag: Chip onto Zone
	ActionClearZone   ActionKind = "clear_zone"   // drag: empty Zone
)

// Action is one user interaction with a widget.
type Action struct {
	Kind   ActionKind   `json:"kind" binding:"required"`
	Index  int          `json:"index"`
	Value  *bool        `json:"value,omitempty"`
	Prompt int          `json:"prompt"`
	Answer string       `json:"answer"`
	Zone   int          `json:"zone"`
	Chip   *models.Chip `json:"chip,omitempty"`
}

// Shuffler permutes n elements; rand.Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// Handle is the live capture state of one rendered question.
type Handle interface {
	Question() *models.Question
	Apply(a Action) error
	CurrentAnswer() models.CapturedAnswer
	Lock()
	Locked() bool
	View() View
}

// Render builds the widget for q. The prompt has its images resolved here.
func Render(q *models.Question, shuffle Shuffler) (Handle, error) {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	base := base{
		question:   q,
		promptHTML: resolver.Resolve(q.PromptHTML, q.Files),
	}
	switch q.Type {
	case models.MultipleChoice:
		return newMultipleChoice(base), nil
	case models.TrueFalse:
		return newTrueFalse(base), nil
	case models.Matching:
		return newMatching(base, shuffle), nil
	case models.DragIntoText:
		return newDragIntoText(base, shuffle), nil
	}
	return nil, fmt.Errorf("%w: no widget for type %q", qerrors.ErrMalformedQuestion, q.Type)
}

// CurrentAnswer returns a snapshot of the handle's captured answer.
func CurrentAnswer(h Handle) models.CapturedAnswer {
	return h.CurrentAnswer()
}

// Lock disables further input on h.
func Lock(h Handle) {
	h.Lock()
}

type base struct {
	question   *models.Question
	promptHTML string
	locked     bool
}

func (b *base) Question() *models.Question { return b.question }
func (b *base) Lock()                      { b.locked = true }
func (b *base) Locked() bool               { return b.locked }

func (b *base) guard(a Action, allowed ...ActionKind) error {
	if b.locked {
		return qerrors.ErrInputLocked
	}
	for _, k := range allowed {
		if a.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not valid for %s", qerrors.ErrInvalidAction, a.Kind, b.question.Type)
}

func (b *base) view() View {
	return View{
		QuestionID: b.question.ID,
		Type:       b.question.Type,
		PromptHTML: b.promptHTML,
		Locked:     b.locked,
	}
}
