package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SessionStore keeps one JSON record per access code plus a set of active
// codes for the admin listing. Record keys get an optional TTL as a
// best-effort retention bound; the lifecycle never depends on it.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.AccessCode, err)
	}
	ok, err := s.client.SetNX(ctx, s.sessionKey(session.AccessCode), data, s.ttl).Result()
	if err != nil {
		return storageErr("create session", err)
	}
	if !ok {
		return domain.ErrDuplicateCode
	}
	if err := s.client.SAdd(ctx, s.activeKey(), session.AccessCode).Err(); err != nil {
		return storageErr("track active session", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, accessCode string) (domain.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(accessCode)).Bytes()
	if err == redis.Nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, storageErr("load session", err)
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session %s: %w", accessCode, err)
	}
	return session, nil
}

func (s *SessionStore) Update(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.AccessCode, err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.sessionKey(session.AccessCode), data, s.ttl)
	if session.Status == domain.StatusCompleted {
		pipe.SRem(ctx, s.activeKey(), session.AccessCode)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("update session", err)
	}
	return nil
}

// ListActive scans the active-code set. Concurrent admin refreshes collapse
// into a single scan via singleflight.
func (s *SessionStore) ListActive(ctx context.Context) ([]domain.Session, error) {
	result, err, _ := s.sf.Do("active", func() (interface{}, error) {
		codes, err := s.client.SMembers(ctx, s.activeKey()).Result()
		if err != nil {
			return nil, storageErr("list active sessions", err)
		}
		sessions := make([]domain.Session, 0, len(codes))
		for _, code := range codes {
			session, err := s.Get(ctx, code)
			if errors.Is(err, domain.ErrSessionNotFound) {
				// Record expired out from under the set; drop the marker.
				_ = s.client.SRem(ctx, s.activeKey(), code).Err()
				continue
			}
			if err != nil {
				return nil, err
			}
			if session.Status == domain.StatusActive {
				sessions = append(sessions, session)
			}
		}
		return sessions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Session), nil
}

func (s *SessionStore) sessionKey(accessCode string) string {
	return "assessment:session:" + accessCode
}

func (s *SessionStore) activeKey() string {
	return "assessment:sessions:active"
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}
