package capture

import "github.com/SAP-F-2025/quiz-player/internal/models"

// View is what a client needs to draw the widget in its current state.
type View struct {
	QuestionID string              `json:"questionId"`
	Type       models.QuestionType `json:"type"`
	PromptHTML string              `json:"promptHtml"`
	Locked     bool                `json:"locked"`

	Options  []OptionView `json:"options,omitempty"`
	Prompts  []PromptView `json:"prompts,omitempty"`
	Pool     []string     `json:"pool,omitempty"`
	Chips    []ChipView   `json:"chips,omitempty"`
	Zones    []ZoneView   `json:"zones,omitempty"`
	IsSingle bool         `json:"isSingle,omitempty"`
}

type OptionView struct {
	Index    int    `json:"index"`
	HTML     string `json:"html"`
	Selected bool   `json:"selected"`
}

type PromptView struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Selected string `json:"selected"`
}

type ChipView struct {
	Chip   models.Chip `json:"chip"`
	Label  string      `json:"label"`
	Hidden bool        `json:"hidden"`
}

type ZoneView struct {
	Position int    `json:"position"`
	ID       int    `json:"id"`
	Label    string `json:"label,omitempty"`
	Filled   bool   `json:"filled"`
}
