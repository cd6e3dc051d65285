package capture

import (
	"fmt"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// matching shows one dropdown per prompt, all sharing a shuffled pool of
// the correct answers plus distractors.
type matching struct {
	base
	pool    []string
	inPool  map[string]bool
	matches map[int]string
}

func newMatching(b base, shuffle Shuffler) *matching {
	seen := map[string]bool{}
	var pool []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			pool = append(pool, s)
		}
	}
	for _, p := range b.question.Pairs {
		add(p.Answer)
	}
	for _, d := range b.question.Distractors {
		add(d)
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	return &matching{base: b, pool: pool, inPool: seen, matches: map[int]string{}}
}

func (w *matching) Apply(a Action) error {
	if err := w.guard(a, ActionSelect, ActionClearSelect); err != nil {
		return err
	}
	if a.Prompt < 0 || a.Prompt >= len(w.question.Pairs) {
		return fmt.Errorf("%w: prompt %d out of range", qerrors.ErrInvalidAction, a.Prompt)
	}
	if a.Kind == ActionClearSelect || a.Answer == "" {
		delete(w.matches, a.Prompt)
		return nil
	}
	if !w.inPool[a.Answer] {
		return fmt.Errorf("%w: %q is not an offered answer", qerrors.ErrInvalidAction, a.Answer)
	}
	w.matches[a.Prompt] = a.Answer
	return nil
}

func (w *matching) CurrentAnswer() models.CapturedAnswer {
	m := make(map[int]string, len(w.matches))
	for k, v := range w.matches {
		m[k] = v
	}
	return models.CapturedAnswer{Type: models.Matching, Matches: m}
}

func (w *matching) View() View {
	v := w.view()
	v.Pool = append([]string(nil), w.pool...)
	for i, p := range w.question.Pairs {
		v.Prompts = append(v.Prompts, PromptView{Index: i, Text: p.Prompt, Selected: w.matches[i]})
	}
	return v
}
