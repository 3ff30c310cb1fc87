package mysql

import (
	"context"

	"loanappl-backend/internal/domain/loantype"

	"gorm.io/gorm"
)

type LoanTypeRepository struct{ db *gorm.DB }

func NewLoanTypeRepository(db *gorm.DB) *LoanTypeRepository { return &LoanTypeRepository{db: db} }

func (r *LoanTypeRepository) Create(ctx context.Context, lt *loantype.LoanType) error {
	return duplicate(r.db.WithContext(ctx).Create(lt).Error, loantype.ErrAlreadyExists)
}

func (r *LoanTypeRepository) Save(ctx context.Context, lt *loantype.LoanType) error {
	return r.db.WithContext(ctx).Save(lt).Error
}

func (r *LoanTypeRepository) GetByLoanTypeID(ctx context.Context, loanTypeID string) (*loantype.LoanType, error) {
	var out loantype.LoanType
	res := r.db.WithContext(ctx).Where("loan_type_id = ?", loanTypeID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, loantype.ErrNotFound)
	}
	return &out, nil
}
