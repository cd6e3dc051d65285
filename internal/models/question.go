package models

import "strings"

// QuestionType is the canonical kind of a loaded question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multichoice"
	TrueFalse      QuestionType = "truefalse"
	Matching       QuestionType = "matching"
	DragIntoText   QuestionType = "drag-into-text"
)

// WireDragIntoText is the name the question bank uses for drag-into-text items.
const WireDragIntoText = "ddwtos"

// ParseQuestionType maps a wire type name onto a canonical QuestionType.
func ParseQuestionType(s string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multichoice", "multiple_choice", "mcq":
		return MultipleChoice, true
	case "truefalse", "true_false":
		return TrueFalse, true
	case "matching", "match":
		return Matching, true
	case WireDragIntoText, "drag-into-text", "draganddrop", "gapselect":
		return DragIntoText, true
	}
	return "", false
}

func (t QuestionType) IsValid() bool {
	switch t {
	case MultipleChoice, TrueFalse, Matching, DragIntoText:
		return true
	}
	return false
}

// File is an embedded media attachment available for placeholder resolution.
type File struct {
	Name   string `json:"name"`
	Base64 string `json:"base64"`
}

type MatchPair struct {
	Prompt string `json:"prompt" validate:"required"`
	Answer string `json:"answer" validate:"required"`
}

// DropZone is one [[n]] marker in the stem, in order of appearance.
type DropZone struct {
	ID            int    `json:"id"`
	ExpectedGroup string `json:"expectedGroup" validate:"required"`
}

type DragItem struct {
	Label    string `json:"label" validate:"required"`
	Group    string `json:"group" validate:"required"`
	Reusable bool   `json:"reusable"`
}

// Question is the canonical, immutable model produced by the normalizer.
// Only the fields belonging to Type are populated.
type Question struct {
	ID         string       `json:"id" validate:"required"`
	Type       QuestionType `json:"type" validate:"required,question_type"`
	PromptHTML string       `json:"promptHtml"`
	Files      []File       `json:"files,omitempty"`

	// multichoice
	Options        []string `json:"options,omitempty"`
	CorrectIndexes []int    `json:"correctIndexes,omitempty"`
	IsSingle       bool     `json:"isSingle,omitempty"`

	// truefalse
	CorrectValue bool `json:"correctValue"`

	// matching
	Pairs       []MatchPair `json:"pairs,omitempty" validate:"omitempty,dive"`
	Distractors []string    `json:"distractors,omitempty"`

	// drag-into-text
	DropZones      []DropZone        `json:"dropZones,omitempty" validate:"omitempty,dive"`
	DraggableItems []DragItem        `json:"draggableItems,omitempty" validate:"omitempty,dive"`
	GroupLabels    map[string]string `json:"groupLabels,omitempty"`
	GroupMode      bool              `json:"groupMode,omitempty"`

	// Reclassified is set when a two-option True/False multichoice was
	// turned into a truefalse question.
	Reclassified bool `json:"reclassified,omitempty"`
}

// ZoneGroups returns the distinct expected groups in order of first appearance.
func (q *Question) ZoneGroups() []string {
	seen := make(map[string]bool, len(q.DropZones))
	groups := make([]string, 0, len(q.DropZones))
	for _, z := range q.DropZones {
		if !seen[z.ExpectedGroup] {
			seen[z.ExpectedGroup] = true
			groups = append(groups, z.ExpectedGroup)
		}
	}
	return groups
}

// GroupLabel returns the display label of a group, or a generic one.
func (q *Question) GroupLabel(group string) string {
	if l, ok := q.GroupLabels[group]; ok && l != "" {
		return l
	}
	return "Option " + group
}
