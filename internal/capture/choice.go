package capture

import (
	"fmt"
	"sort"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/resolver"
)

// multipleChoice is a toggled multi-select. The count is never limited,
// even when the source marks the question single-answer.
type multipleChoice struct {
	base
	options  []string
	selected map[int]bool
}

func newMultipleChoice(b base) *multipleChoice {
	opts := make([]string, len(b.question.Options))
	for i, o := range b.question.Options {
		opts[i] = resolver.Resolve(o, b.question.Files)
	}
	return &multipleChoice{base: b, options: opts, selected: map[int]bool{}}
}

func (w *multipleChoice) Apply(a Action) error {
	if err := w.guard(a, ActionToggle); err != nil {
		return err
	}
	if a.Index < 0 || a.Index >= len(w.options) {
		return fmt.Errorf("%w: option %d out of range", qerrors.ErrInvalidAction, a.Index)
	}
	if w.selected[a.Index] {
		delete(w.selected, a.Index)
	} else {
		w.selected[a.Index] = true
	}
	return nil
}

func (w *multipleChoice) CurrentAnswer() models.CapturedAnswer {
	sel := make([]int, 0, len(w.selected))
	for i := range w.selected {
		sel = append(sel, i)
	}
	sort.Ints(sel)
	return models.CapturedAnswer{Type: models.MultipleChoice, Selected: sel}
}

func (w *multipleChoice) View() View {
	v := w.view()
	v.IsSingle = w.question.IsSingle
	for i, o := range w.options {
		v.Options = append(v.Options, OptionView{Index: i, HTML: o, Selected: w.selected[i]})
	}
	return v
}

// trueFalse is an exclusive choice between True and False. Reclassified
// multichoice questions land here too.
type trueFalse struct {
	base
	value *bool
}

func newTrueFalse(b base) *trueFalse {
	return &trueFalse{base: b}
}

func (w *trueFalse) Apply(a Action) error {
	if err := w.guard(a, ActionChoose); err != nil {
		return err
	}
	if a.Value == nil {
		return fmt.Errorf("%w: choose needs a value", qerrors.ErrInvalidAction)
	}
	v := *a.Value
	w.value = &v
	return nil
}

func (w *trueFalse) CurrentAnswer() models.CapturedAnswer {
	ans := models.CapturedAnswer{Type: models.TrueFalse}
	if w.value != nil {
		v := *w.value
		ans.Value = &v
	}
	return ans
}

func (w *trueFalse) View() View {
	v := w.view()
	v.Options = []OptionView{
		{Index: 0, HTML: "True", Selected: w.value != nil && *w.value},
		{Index: 1, HTML: "False", Selected: w.value != nil && !*w.value},
	}
	return v
}
