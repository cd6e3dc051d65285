package session

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/capture"
	"github.com/SAP-F-2025/quiz-player/internal/grader"
	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// View is a snapshot of the session for clients.
type View struct {
	SessionID string             `json:"sessionId"`
	Mode      models.SessionMode `json:"mode"`
	Phase     Phase              `json:"phase"`
	Progress  Progress           `json:"progress"`

	Question   *capture.View    `json:"question,omitempty"`
	LoadError  string           `json:"loadError,omitempty"`
	Feedback   *grader.Feedback `json:"feedback,omitempty"`
	CanAdvance bool             `json:"canAdvance"`

	Score     *models.Score `json:"score,omitempty"`
	EndReason string        `json:"endReason,omitempty"`
}

type Progress struct {
	Current             int    `json:"current"`
	Total               int    `json:"total"`
	Label               string `json:"label"`
	QuestionRemainingMs *int64 `json:"questionRemainingMs,omitempty"`
	SessionRemainingMs  *int64 `json:"sessionRemainingMs,omitempty"`
}

func remaining(deadline *time.Time, now time.Time) *int64 {
	if deadline == nil {
		return nil
	}
	ms := deadline.Sub(now).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &ms
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.deps.Now()
	total := len(c.state.QuestionIDs)
	current := c.state.CurrentIndex + 1
	if current > total {
		current = total
	}

	v := View{
		SessionID: c.id,
		Mode:      c.cfg.Mode,
		Phase:     c.phase,
		Progress: Progress{
			Current:             current,
			Total:               total,
			Label:               fmt.Sprintf("Question %d of %d", current, total),
			QuestionRemainingMs: remaining(c.state.PerQuestionDeadline, now),
			SessionRemainingMs:  remaining(c.state.SessionDeadline, now),
		},
		Feedback:  c.feedback,
		EndReason: c.endReason,
	}
	if c.handle != nil && c.phase != PhaseFinished {
		qv := c.handle.View()
		v.Question = &qv
	}
	if c.loadErr != nil {
		v.LoadError = loadErrorMessage(c.loadErr)
	}
	v.CanAdvance = c.phase == PhaseGraded || (c.phase == PhaseLoading && c.loadErr != nil)
	if c.phase == PhaseFinished {
		s := c.state.Score()
		v.Score = &s
	}
	return v
}
