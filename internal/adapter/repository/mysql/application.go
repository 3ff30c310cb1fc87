package mysql

import (
	"context"

	"loanappl-backend/internal/domain/loanappl"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *loanappl.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *loanappl.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loanappl.Application, error) {
	var out loanappl.Application
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loanappl.ErrNotFound)
	}
	return &out, nil
}

// GetByApplicationIDForUpdate is a no-op lock on sqlite; the dialect drops FOR UPDATE.
func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*loanappl.Application, error) {
	var out loanappl.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loanappl.ErrNotFound)
	}
	return &out, nil
}
