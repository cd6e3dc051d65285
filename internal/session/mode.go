package session

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

const (
	DefaultPracticeCount = 10
	MaxQuestionCount     = 100

	examQuestionCount = 60
	examTimeLimit     = 20 * time.Minute
	perQuestionLimit  = 30 * time.Second

	// feedback stays on screen this long before a timed-out question advances
	timeoutAdvanceDelay = 1500 * time.Millisecond
)

// ModeConfig parameterizes the one session engine. The three modes differ
// only in these knobs.
type ModeConfig struct {
	Mode                models.SessionMode
	QuestionCount       int
	PerQuestionLimit    time.Duration // zero: untimed
	SessionLimit        time.Duration // zero: no session clock
	AdvanceOnSubmit     bool
	AvoidRecent         bool
	TimeoutAdvanceDelay time.Duration
}

func (m ModeConfig) Timed() bool { return m.PerQuestionLimit > 0 }

func Practice(count int) ModeConfig {
	return ModeConfig{
		Mode:          models.ModePractice,
		QuestionCount: clampCount(count),
		AvoidRecent:   true,
	}
}

func Timed(count int) ModeConfig {
	return ModeConfig{
		Mode:                models.ModeTimed,
		QuestionCount:       clampCount(count),
		PerQuestionLimit:    perQuestionLimit,
		AvoidRecent:         true,
		TimeoutAdvanceDelay: timeoutAdvanceDelay,
	}
}

// Exam is the full mock exam: fixed length, global clock, and the next
// question follows a submit without waiting for the candidate.
func Exam() ModeConfig {
	return ModeConfig{
		Mode:                models.ModeExam,
		QuestionCount:       examQuestionCount,
		PerQuestionLimit:    perQuestionLimit,
		SessionLimit:        examTimeLimit,
		AdvanceOnSubmit:     true,
		TimeoutAdvanceDelay: timeoutAdvanceDelay,
	}
}

// ConfigFor resolves a mode name and requested count. Exam ignores count.
func ConfigFor(mode models.SessionMode, count int) (ModeConfig, error) {
	switch mode {
	case models.ModePractice, "":
		return Practice(count), nil
	case models.ModeTimed:
		return Timed(count), nil
	case models.ModeExam:
		return Exam(), nil
	}
	return ModeConfig{}, fmt.Errorf("unknown session mode %q", mode)
}

func clampCount(n int) int {
	if n <= 0 {
		return DefaultPracticeCount
	}
	if n > MaxQuestionCount {
		return MaxQuestionCount
	}
	return n
}
