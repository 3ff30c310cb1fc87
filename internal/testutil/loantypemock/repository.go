package loantypemock

import (
	"context"

	"loanappl-backend/internal/domain/loantype"
)

var _ loantype.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn          func(ctx context.Context, lt *loantype.LoanType) error
	SaveFn            func(ctx context.Context, lt *loantype.LoanType) error
	GetByLoanTypeIDFn func(ctx context.Context, loanTypeID string) (*loantype.LoanType, error)
}

func (m *Repo) Create(ctx context.Context, lt *loantype.LoanType) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, lt)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, lt *loantype.LoanType) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, lt)
	}
	return nil
}

func (m *Repo) GetByLoanTypeID(ctx context.Context, loanTypeID string) (*loantype.LoanType, error) {
	if m.GetByLoanTypeIDFn != nil {
		return m.GetByLoanTypeIDFn(ctx, loanTypeID)
	}
	return nil, loantype.ErrNotFound
}
