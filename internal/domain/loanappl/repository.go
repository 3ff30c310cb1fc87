package loanappl

import "context"

type Repository interface {
	Create(ctx context.Context, a *Application) error
	Save(ctx context.Context, a *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// Locks the row until the surrounding transaction ends.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
}
