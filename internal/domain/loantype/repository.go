package loantype

import "context"

type Repository interface {
	Create(ctx context.Context, lt *LoanType) error
	Save(ctx context.Context, lt *LoanType) error
	GetByLoanTypeID(ctx context.Context, loanTypeID string) (*LoanType, error)
}
