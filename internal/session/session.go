package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/profile"
)

// DefaultTTL bounds how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session holds one user's profile and the recommendations computed for it.
type Session struct {
	ID              string                    `json:"id"`
	Profile         profile.Profile           `json:"profile"`
	Recommendations []matching.Recommendation `json:"recommendations"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// HasRecommendations reports whether recommendations are cached.
func (s *Session) HasRecommendations() bool {
	return s != nil && s.Recommendations != nil
}

// Store keeps sessions between requests.
type Store interface {
	Create(ctx context.Context, p profile.Profile) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	SaveRecommendations(ctx context.Context, id string, recs []matching.Recommendation) error
	Delete(ctx context.Context, id string) error
}

func newSession(p profile.Profile, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Profile:   p,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
