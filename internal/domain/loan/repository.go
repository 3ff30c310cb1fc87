package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Returns the non-cancelled loan made from the application.
	GetActiveByApplicationID(ctx context.Context, applicationID string) (*Loan, error)
}
