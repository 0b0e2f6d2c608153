package domain

import (
	"fmt"
	"math"
	"time"
)

// QuestionType discriminates how a question is answered and scored.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	TextInput      QuestionType = "text_input"
)

// Question is immutable within a bank. For choice questions CorrectIndex
// points into Options; for text questions Accepted lists every literal
// spelling that counts as correct.
type Question struct {
	ID           int          `json:"id" yaml:"id"`
	Type         QuestionType `json:"type" yaml:"type"`
	Prompt       string       `json:"prompt" yaml:"prompt"`
	Options      []string     `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectIndex int          `json:"correctIndex" yaml:"correct"`
	Accepted     []string     `json:"accepted,omitempty" yaml:"accepted,omitempty"`
}

// QuestionBank is the versioned, read-only source of truth for all sessions.
type QuestionBank struct {
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description" yaml:"description"`
	Version          string     `json:"version" yaml:"version"`
	TimeLimitSeconds int        `json:"timeLimitSeconds" yaml:"time_limit_seconds"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

// Validate checks bank integrity eagerly, at load time. A failure here is
// fatal: the service must not start with a malformed bank.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: bank has no questions", ErrBankIntegrity)
	}
	seen := make(map[int]struct{}, len(b.Questions))
	for _, q := range b.Questions {
		if q.ID <= 0 {
			return fmt.Errorf("%w: question id %d is not positive", ErrBankIntegrity, q.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", ErrBankIntegrity, q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Prompt == "" {
			return fmt.Errorf("%w: question %d has an empty prompt", ErrBankIntegrity, q.ID)
		}
		switch q.Type {
		case MultipleChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("%w: question %d has no options", ErrBankIntegrity, q.ID)
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return fmt.Errorf("%w: question %d correct index %d out of range", ErrBankIntegrity, q.ID, q.CorrectIndex)
			}
		case TrueFalse:
			if len(q.Options) != 2 {
				return fmt.Errorf("%w: question %d must have exactly two options", ErrBankIntegrity, q.ID)
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return fmt.Errorf("%w: question %d correct index %d out of range", ErrBankIntegrity, q.ID, q.CorrectIndex)
			}
		case TextInput:
			if len(q.Accepted) == 0 {
				return fmt.Errorf("%w: question %d has no accepted answers", ErrBankIntegrity, q.ID)
			}
		default:
			return fmt.Errorf("%w: question %d has unknown type %q", ErrBankIntegrity, q.ID, q.Type)
		}
	}
	return nil
}

// SessionStatus is the lifecycle state of one attempt.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// Session is one test-taker's attempt. The access code is the only external
// lookup key. Questions is the per-session permutation of the bank, shuffled
// once at creation and never reshuffled.
type Session struct {
	AccessCode     string              `json:"accessCode"`
	StartTime      time.Time           `json:"startTime"`
	EndTime        *time.Time          `json:"endTime,omitempty"`
	Questions      []Question          `json:"questions"`
	Answers        map[int]AnswerValue `json:"answers"`
	Status         SessionStatus       `json:"status"`
	Score          int                 `json:"score"`
	TotalQuestions int                 `json:"totalQuestions"`
}

// Clone returns a deep copy so callers can mutate answers without aliasing
// a stored record.
func (s Session) Clone() Session {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	copy(out.Questions, s.Questions)
	out.Answers = make(map[int]AnswerValue, len(s.Answers))
	for id, v := range s.Answers {
		out.Answers[id] = v
	}
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return out
}

// Result is the score tuple produced when a session completes.
type Result struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Result derives the score tuple from a completed session's stored fields.
// The percentage is rounded to one decimal place and fails closed to 0 when
// the total is zero.
func (s Session) Result() Result {
	pct := 0.0
	if s.TotalQuestions > 0 {
		pct = math.Round(float64(s.Score)/float64(s.TotalQuestions)*1000) / 10
	}
	return Result{Score: s.Score, Total: s.TotalQuestions, Percentage: pct}
}

// QuestionReview is the per-question breakdown of a completed session.
type QuestionReview struct {
	QuestionID    int          `json:"questionId"`
	Prompt        string       `json:"prompt"`
	Type          QuestionType `json:"type"`
	UserAnswer    AnswerValue  `json:"userAnswer"`
	CorrectAnswer string       `json:"correctAnswer"`
	IsCorrect     bool         `json:"isCorrect"`
}
