package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
)

// SessionStore abstracts durable session storage keyed by access code
// (in-memory, Redis, etc).
type SessionStore interface {
	// Create persists a new session; domain.ErrDuplicateCode on collision.
	Create(ctx context.Context, session domain.Session) error
	// Get loads a session; domain.ErrSessionNotFound for unknown codes.
	Get(ctx context.Context, accessCode string) (domain.Session, error)
	// Update overwrites an existing session record.
	Update(ctx context.Context, session domain.Session) error
	// ListActive returns all sessions still marked active. Administrative
	// convenience, not part of the state machine.
	ListActive(ctx context.Context) ([]domain.Session, error)
}

// ActivityState is the outcome of a liveness check on a session.
type ActivityState int

const (
	// StillActive: the session accepts answers.
	StillActive ActivityState = iota
	// ExpiredNow: this check detected the timeout and completed the session.
	ExpiredNow
	// AlreadyCompleted: the session finished on an earlier call.
	AlreadyCompleted
)

// maxCodeAttempts bounds collision retries during session creation.
const maxCodeAttempts = 5

// storeTimeout bounds every store round-trip so no operation hangs on a
// stalled backend.
const storeTimeout = 5 * time.Second

// SessionLifecycle owns the Active -> Completed state machine. It is the
// sole mutator of status, end time and score. Expiry is detected lazily on
// access; there is no background timer inside the machine.
type SessionLifecycle struct {
	store SessionStore
	bank  domain.QuestionBank
	limit time.Duration
	now   func() time.Time
	locks lockTable
}

func NewSessionLifecycle(store SessionStore, bank domain.QuestionBank, limit time.Duration) *SessionLifecycle {
	return NewSessionLifecycleWithClock(store, bank, limit, time.Now)
}

// NewSessionLifecycleWithClock allows deterministic timestamps in tests.
func NewSessionLifecycleWithClock(store SessionStore, bank domain.QuestionBank, limit time.Duration, now func() time.Time) *SessionLifecycle {
	return &SessionLifecycle{store: store, bank: bank, limit: limit, now: now}
}

// Create starts a new session: unique access code, shuffled question
// snapshot, status active.
func (l *SessionLifecycle) Create(ctx context.Context) (domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := newAccessCode()
		if err != nil {
			return domain.Session{}, err
		}
		session := domain.Session{
			AccessCode: code,
			StartTime:  l.now(),
			Questions:  sessionQuestions(l.bank),
			Answers:    make(map[int]domain.AnswerValue),
			Status:     domain.StatusActive,
		}
		err = l.store.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			return domain.Session{}, err
		}
		lastErr = err
	}
	return domain.Session{}, lastErr
}

// CheckActive reports the session's liveness, transitioning it to completed
// (with a score computed from whatever answers exist) the first time the
// limit is found exceeded. Safe to race: callers serialize per access code,
// so the transition runs exactly once.
func (l *SessionLifecycle) CheckActive(ctx context.Context, accessCode string) (ActivityState, domain.Session, error) {
	code := normalizeCode(accessCode)
	unlock := l.locks.lock(code)
	defer unlock()
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return l.checkActiveLocked(ctx, code)
}

func (l *SessionLifecycle) checkActiveLocked(ctx context.Context, code string) (ActivityState, domain.Session, error) {
	session, err := l.store.Get(ctx, code)
	if err != nil {
		return StillActive, domain.Session{}, err
	}
	if session.Status == domain.StatusCompleted {
		return AlreadyCompleted, session, nil
	}
	now := l.now()
	if now.Sub(session.StartTime) > l.limit {
		end := now
		session.EndTime = &end
		session.Status = domain.StatusCompleted
		session.Score, session.TotalQuestions = scoreSession(session.Questions, session.Answers)
		if err := l.store.Update(ctx, session); err != nil {
			return StillActive, domain.Session{}, err
		}
		return ExpiredNow, session, nil
	}
	return StillActive, session, nil
}

// RecordAnswer stores one answer while the session is active. Completed or
// just-expired sessions reject the write.
func (l *SessionLifecycle) RecordAnswer(ctx context.Context, accessCode string, questionID int, value domain.AnswerValue) error {
	code := normalizeCode(accessCode)
	unlock := l.locks.lock(code)
	defer unlock()
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	state, session, err := l.checkActiveLocked(ctx, code)
	if err != nil {
		return err
	}
	if state != StillActive {
		return domain.ErrSessionCompleted
	}
	if !hasQuestion(session.Questions, questionID) {
		return domain.ErrQuestionNotFound
	}
	session.Answers[questionID] = value
	return l.store.Update(ctx, session)
}

// Finalize completes an active session and scores it. On an already
// completed (or just expired) session it returns the stored score with
// alreadyCompleted=true; the score is never recomputed.
func (l *SessionLifecycle) Finalize(ctx context.Context, accessCode string) (domain.Result, bool, error) {
	code := normalizeCode(accessCode)
	unlock := l.locks.lock(code)
	defer unlock()
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	state, session, err := l.checkActiveLocked(ctx, code)
	if err != nil {
		return domain.Result{}, false, err
	}
	if state != StillActive {
		return session.Result(), true, nil
	}
	end := l.now()
	session.EndTime = &end
	session.Status = domain.StatusCompleted
	session.Score, session.TotalQuestions = scoreSession(session.Questions, session.Answers)
	if err := l.store.Update(ctx, session); err != nil {
		return domain.Result{}, false, err
	}
	return session.Result(), false, nil
}

// Remaining reports whole seconds left and whether the limit has passed.
// Callable in any state; once the session is completed the value is frozen
// at its end time, so timeout completions report exactly 0.
func (l *SessionLifecycle) Remaining(ctx context.Context, accessCode string) (int, bool, error) {
	code := normalizeCode(accessCode)
	unlock := l.locks.lock(code)
	defer unlock()
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, session, err := l.checkActiveLocked(ctx, code)
	if err != nil {
		return 0, false, err
	}
	deadline := session.StartTime.Add(l.limit)
	at := l.now()
	if session.Status == domain.StatusCompleted && session.EndTime != nil {
		at = *session.EndTime
	}
	left := deadline.Sub(at)
	if left <= 0 {
		return 0, true, nil
	}
	return int(left / time.Second), false, nil
}

func hasQuestion(questions []domain.Question, id int) bool {
	for _, q := range questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// Access codes are case-insensitive on the way in, stored uppercase.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
