package handoff

import (
	"context"
	"errors"
	"time"

	"loanappl-backend/internal/domain/loanappl"
)

var ErrTokenNotFound = errors.New("party handoff token not found or expired")

// Token carries a pending loan application into the creation of a new party
// and back. Either ApplicationID (persisted record) or Draft (unsaved form) is set.
type Token struct {
	ID            string                `json:"id"`
	ApplicationID string                `json:"application_id,omitempty"`
	Draft         *loanappl.Application `json:"draft,omitempty"`
	PartyType     loanappl.PartyType    `json:"party_type"`
	ActorID       string                `json:"actor_id"`
	CreatedAt     time.Time             `json:"created_at"`
}

type Store interface {
	Put(ctx context.Context, t *Token, ttl time.Duration) error
	// Peek returns the token without consuming it.
	Peek(ctx context.Context, id string) (*Token, error)
	// Take returns the token and deletes it; a token can be used once.
	Take(ctx context.Context, id string) (*Token, error)
}
