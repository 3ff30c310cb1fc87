package uow

import (
	"context"

	"loanappl-backend/internal/domain/loan"
	"loanappl-backend/internal/domain/loanappl"
)

type Repos struct {
	Applications loanappl.Repository
	Loans        loan.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *loanappl.Application) error) error
}
