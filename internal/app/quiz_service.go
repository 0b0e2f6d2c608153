package app

import (
	"context"
	"time"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
)

// QuizService orchestrates the session lifecycle for the transport layer:
// create, fetch-for-display, record-answer, finalize, remaining-time and the
// completed-session review.
type QuizService struct {
	store     SessionStore
	bank      domain.QuestionBank
	lifecycle *SessionLifecycle
}

func NewQuizService(store SessionStore, bank domain.QuestionBank, limit time.Duration) *QuizService {
	return NewQuizServiceWithClock(store, bank, limit, time.Now)
}

// NewQuizServiceWithClock is for deterministic timestamps in tests.
func NewQuizServiceWithClock(store SessionStore, bank domain.QuestionBank, limit time.Duration, now func() time.Time) *QuizService {
	return &QuizService{
		store:     store,
		bank:      bank,
		lifecycle: NewSessionLifecycleWithClock(store, bank, limit, now),
	}
}

// Bank exposes the loaded bank's metadata for rendering.
func (s *QuizService) Bank() domain.QuestionBank {
	return s.bank
}

// TimeLimit is the configured wall-clock limit per session.
func (s *QuizService) TimeLimit() time.Duration {
	return s.lifecycle.limit
}

// StartedSession is the response to a start request.
type StartedSession struct {
	AccessCode string `json:"accessCode"`
	SessionURL string `json:"sessionUrl"`
}

// StartSession creates a session and returns its access code and relative URL.
func (s *QuizService) StartSession(ctx context.Context) (StartedSession, error) {
	session, err := s.lifecycle.Create(ctx)
	if err != nil {
		return StartedSession{}, err
	}
	return StartedSession{
		AccessCode: session.AccessCode,
		SessionURL: "/quiz/" + session.AccessCode,
	}, nil
}

// GetSessionForDisplay loads a session for rendering, running the lazy
// expiry check first. The caller branches on the returned state: an active
// session renders questions, a completed or just-expired one renders results.
func (s *QuizService) GetSessionForDisplay(ctx context.Context, accessCode string) (domain.Session, ActivityState, error) {
	state, session, err := s.lifecycle.CheckActive(ctx, accessCode)
	if err != nil {
		return domain.Session{}, state, err
	}
	return session, state, nil
}

// SubmitAnswer records one answer while the session is active.
func (s *QuizService) SubmitAnswer(ctx context.Context, accessCode string, questionID int, value domain.AnswerValue) error {
	return s.lifecycle.RecordAnswer(ctx, accessCode, questionID, value)
}

// FinalizeSession completes and scores the session. alreadyCompleted reports
// whether the returned result was stored by an earlier completion.
func (s *QuizService) FinalizeSession(ctx context.Context, accessCode string) (domain.Result, bool, error) {
	return s.lifecycle.Finalize(ctx, accessCode)
}

// GetRemainingTime reports seconds left and whether the limit has passed.
func (s *QuizService) GetRemainingTime(ctx context.Context, accessCode string) (int, bool, error) {
	return s.lifecycle.Remaining(ctx, accessCode)
}

// GetSessionDetail returns the per-question review of a completed session.
// Requests against a still-active session fail with domain.ErrSessionActive.
func (s *QuizService) GetSessionDetail(ctx context.Context, accessCode string) (domain.Result, []domain.QuestionReview, error) {
	state, session, err := s.lifecycle.CheckActive(ctx, accessCode)
	if err != nil {
		return domain.Result{}, nil, err
	}
	if state == StillActive {
		return domain.Result{}, nil, domain.ErrSessionActive
	}
	reviews := make([]domain.QuestionReview, 0, len(session.Questions))
	for _, q := range session.Questions {
		answer, answered := session.Answers[q.ID]
		reviews = append(reviews, domain.QuestionReview{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			Type:          q.Type,
			UserAnswer:    answer,
			CorrectAnswer: correctAnswerLabel(q),
			IsCorrect:     answered && isCorrect(q, answer),
		})
	}
	return session.Result(), reviews, nil
}

// ActiveSessionSummary is one row of the admin listing.
type ActiveSessionSummary struct {
	AccessCode       string    `json:"accessCode"`
	StartedAt        time.Time `json:"startedAt"`
	SecondsRemaining int       `json:"secondsRemaining"`
	Answered         int       `json:"answered"`
}

// ActiveSessions lists sessions still marked active with their live
// countdown. Read-only: an overdue session is reported with zero remaining
// but not transitioned here.
func (s *QuizService) ActiveSessions(ctx context.Context) ([]ActiveSessionSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	sessions, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.lifecycle.now()
	summaries := make([]ActiveSessionSummary, 0, len(sessions))
	for _, session := range sessions {
		left := session.StartTime.Add(s.lifecycle.limit).Sub(now)
		if left < 0 {
			left = 0
		}
		summaries = append(summaries, ActiveSessionSummary{
			AccessCode:       session.AccessCode,
			StartedAt:        session.StartTime,
			SecondsRemaining: int(left / time.Second),
			Answered:         len(session.Answers),
		})
	}
	return summaries, nil
}

func correctAnswerLabel(q domain.Question) string {
	switch q.Type {
	case domain.MultipleChoice, domain.TrueFalse:
		if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
			return q.Options[q.CorrectIndex]
		}
		return ""
	case domain.TextInput:
		if len(q.Accepted) > 0 {
			return q.Accepted[0]
		}
	}
	return ""
}
