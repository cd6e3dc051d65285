package models

import (
	"sort"
	"time"
)

type ChipKind string

const (
	ChipItem  ChipKind = "item"
	ChipGroup ChipKind = "group"
)

// Chip is what sits in a drop zone: either one draggable item (by index)
// or a whole group.
type Chip struct {
	Kind  ChipKind `json:"kind"`
	Index int      `json:"index"`
	Group string   `json:"group,omitempty"`
}

// CapturedAnswer is the candidate's selection for one question. Only the
// field matching Type is meaningful.
type CapturedAnswer struct {
	Type QuestionType `json:"type"`

	// multichoice: selected option indexes, sorted
	Selected []int `json:"selected,omitempty"`

	// truefalse: nil until a choice is made
	Value *bool `json:"value,omitempty"`

	// matching: prompt index -> chosen answer text
	Matches map[int]string `json:"matches,omitempty"`

	// drag-into-text: zone position -> chip
	Placements map[int]Chip `json:"placements,omitempty"`
}

// IsEmpty reports whether nothing was ever captured.
func (a CapturedAnswer) IsEmpty() bool {
	switch a.Type {
	case MultipleChoice:
		return len(a.Selected) == 0
	case TrueFalse:
		return a.Value == nil
	case Matching:
		for _, v := range a.Matches {
			if v != "" {
				return false
			}
		}
		return true
	case DragIntoText:
		return len(a.Placements) == 0
	}
	return true
}

// Clone returns a deep copy, so results never alias widget state.
func (a CapturedAnswer) Clone() CapturedAnswer {
	out := CapturedAnswer{Type: a.Type}
	if a.Selected != nil {
		out.Selected = append([]int(nil), a.Selected...)
		sort.Ints(out.Selected)
	}
	if a.Value != nil {
		v := *a.Value
		out.Value = &v
	}
	if a.Matches != nil {
		out.Matches = make(map[int]string, len(a.Matches))
		for k, v := range a.Matches {
			out.Matches[k] = v
		}
	}
	if a.Placements != nil {
		out.Placements = make(map[int]Chip, len(a.Placements))
		for k, v := range a.Placements {
			out.Placements[k] = v
		}
	}
	return out
}

// GradeResult is appended once per question and never mutated afterwards.
type GradeResult struct {
	QuestionID string         `json:"questionId"`
	Correct    bool           `json:"correct"`
	Answer     CapturedAnswer `json:"capturedAnswer"`
	TimedOut   bool           `json:"timedOut"`
	DurationMs int64          `json:"durationMs"`
	GradedAt   time.Time      `json:"gradedAt"`
}

// SessionState is owned and mutated only by the session controller.
type SessionState struct {
	QuestionIDs         []string      `json:"questionIds"`
	CurrentIndex        int           `json:"currentIndex"`
	Results             []GradeResult `json:"results"`
	SessionDeadline     *time.Time    `json:"sessionDeadline,omitempty"`
	PerQuestionDeadline *time.Time    `json:"perQuestionDeadline,omitempty"`
}

// Score aggregates results: Correct over Total planned questions.
type Score struct {
	Correct  int     `json:"correct"`
	Answered int     `json:"answered"`
	TimedOut int     `json:"timedOut"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

func (s *SessionState) Score() Score {
	sc := Score{Total: len(s.QuestionIDs), Answered: len(s.Results)}
	for _, r := range s.Results {
		if r.Correct {
			sc.Correct++
		}
		if r.TimedOut {
			sc.TimedOut++
		}
	}
	if sc.Total > 0 {
		sc.Percent = float64(sc.Correct) * 100 / float64(sc.Total)
	}
	return sc
}
