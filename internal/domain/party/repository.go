package party

import (
	"context"

	"loanappl-backend/internal/domain/loanappl"
)

// Directory looks parties up by type and id.
type Directory interface {
	Get(ctx context.Context, partyType loanappl.PartyType, partyID string) (*Party, error)
}

type Repository interface {
	Directory
	Create(ctx context.Context, p *Party) error
}
