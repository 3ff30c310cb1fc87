package partymock

import (
	"context"

	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/party"
)

var _ party.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn func(ctx context.Context, p *party.Party) error
	GetFn    func(ctx context.Context, partyType loanappl.PartyType, partyID string) (*party.Party, error)
}

func (m *Repo) Create(ctx context.Context, p *party.Party) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, partyType loanappl.PartyType, partyID string) (*party.Party, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, partyType, partyID)
	}
	return nil, party.ErrNotFound
}
