package mysql

import (
	"context"

	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/party"

	"gorm.io/gorm"
)

type PartyRepository struct{ db *gorm.DB }

func NewPartyRepository(db *gorm.DB) *PartyRepository { return &PartyRepository{db: db} }

func (r *PartyRepository) Create(ctx context.Context, p *party.Party) error {
	return duplicate(r.db.WithContext(ctx).Create(p).Error, party.ErrAlreadyExists)
}

func (r *PartyRepository) Get(ctx context.Context, partyType loanappl.PartyType, partyID string) (*party.Party, error) {
	var out party.Party
	res := r.db.WithContext(ctx).
		Where("party_type = ? AND party_id = ?", partyType, partyID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, party.ErrNotFound)
	}
	return &out, nil
}
