package loanmock

import (
	"context"

	domain "loanappl-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                   func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn              func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetActiveByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

// Default: no active loan.
func (m *Repo) GetActiveByApplicationID(ctx context.Context, applicationID string) (*domain.Loan, error) {
	if m.GetActiveByApplicationIDFn != nil {
		return m.GetActiveByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}
