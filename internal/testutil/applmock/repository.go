package applmock

import (
	"context"

	"loanappl-backend/internal/domain/loanappl"
)

var _ loanappl.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies loanappl.Repository.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *loanappl.Application) error
	SaveFn                        func(ctx context.Context, a *loanappl.Application) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*loanappl.Application, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*loanappl.Application, error)
}

func (m *Repo) Create(ctx context.Context, a *loanappl.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *loanappl.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*loanappl.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, loanappl.ErrNotFound
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*loanappl.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return m.GetByApplicationID(ctx, applicationID)
}

// Store is an in-memory Repo keyed by ApplicationID, handy for driver tests.
type Store struct {
	Repo
	Rows   map[string]*loanappl.Application
	nextID uint64
}

func NewStore() *Store {
	s := &Store{Rows: map[string]*loanappl.Application{}}
	s.CreateFn = func(_ context.Context, a *loanappl.Application) error {
		s.nextID++
		a.ID = s.nextID
		cp := *a
		s.Rows[a.ApplicationID] = &cp
		return nil
	}
	s.SaveFn = func(_ context.Context, a *loanappl.Application) error {
		cp := *a
		s.Rows[a.ApplicationID] = &cp
		return nil
	}
	s.GetByApplicationIDFn = func(_ context.Context, applicationID string) (*loanappl.Application, error) {
		a, ok := s.Rows[applicationID]
		if !ok {
			return nil, loanappl.ErrNotFound
		}
		cp := *a
		return &cp, nil
	}
	return s
}
