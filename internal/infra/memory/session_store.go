package memory

import (
	"context"
	"sync"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. Records
// are deep-copied on the way in and out so callers never alias stored state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
	}
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.AccessCode]; exists {
		return domain.ErrDuplicateCode
	}
	s.sessions[session.AccessCode] = session.Clone()
	return nil
}

func (s *SessionStore) Get(_ context.Context, accessCode string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[accessCode]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Update(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.AccessCode]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[session.AccessCode] = session.Clone()
	return nil
}

func (s *SessionStore) ListActive(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.Status == domain.StatusActive {
			active = append(active, session.Clone())
		}
	}
	return active, nil
}
