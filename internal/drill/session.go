package drill

import (
	"context"
	"time"

	"github.com/quantlab/incident-drill/internal/domain"
)

// Session is one trainee's run of the drill: the incident record being
// assembled plus the gate tracking phase progress. Sessions live for the
// lifetime of the process only; the host creates one at start and
// discards it at the end.
type Session struct {
	ID        string
	Incident  *domain.Incident
	Gate      *Gate
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns an independent copy of the session. The gate and the
// incident aggregate are copied; phase sections are immutable once
// assigned (transitions replace whole sections) and stay shared.
func (s *Session) Clone() *Session {
	out := *s
	out.Gate = s.Gate.Clone()
	if s.Incident != nil {
		inc := *s.Incident
		out.Incident = &inc
	}
	return &out
}

// SessionRepository stores drill sessions. The only implementation is
// in-memory (internal/drill/memory); durable storage is deliberately
// out of scope. Implementations must not share session pointers between
// callers: a caller mutates its own snapshot and publishes it with
// Update.
type SessionRepository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
