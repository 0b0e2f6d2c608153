package app

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically touches overdue sessions so their expiry transition
// runs even without user traffic. Best-effort reclamation that lives outside
// the state machine: correctness never depends on it, CheckActive does the
// actual work.
type Sweeper struct {
	service  *QuizService
	interval time.Duration
}

func NewSweeper(service *QuizService, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

// Run loops until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sessions, err := s.service.store.ListActive(ctx)
	if err != nil {
		log.Printf("sweep: list active sessions: %v", err)
		return
	}
	now := s.service.lifecycle.now()
	for _, session := range sessions {
		if now.Sub(session.StartTime) <= s.service.lifecycle.limit {
			continue
		}
		state, _, err := s.service.lifecycle.CheckActive(ctx, session.AccessCode)
		if err != nil {
			log.Printf("sweep: session %s: %v", session.AccessCode, err)
			continue
		}
		if state == ExpiredNow {
			log.Printf("sweep: session %s expired, scored from partial answers", session.AccessCode)
		}
	}
}
