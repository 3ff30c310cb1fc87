package loanappl

import (
	"errors"
	"time"

	domain "loanappl-backend/internal/domain/loanappl"
)

var (
	ErrSuperseded = errors.New("superseded by a newer change to the same application")
	ErrConflict   = errors.New("loan application was modified concurrently, reload and retry")
)

// EditInput is one field edit of a persisted application. UpdatedAt is the
// version the client last saw; zero skips the check.
type EditInput struct {
	Field     string
	Value     string
	UpdatedAt time.Time
}

// FormView is what the client renders after any operation.
type FormView struct {
	Application *domain.Application          `json:"application"`
	IsNew       bool                         `json:"is_new"`
	Fields      map[string]domain.FieldState `json:"fields"`
	Actions     []domain.Action              `json:"actions"`
	Primary     domain.ActionGroup           `json:"primary_group,omitempty"`
	Mutations   []domain.Mutation            `json:"mutations,omitempty"`
	Warnings    []string                     `json:"warnings,omitempty"`
	Failures    []domain.Failure             `json:"failures,omitempty"`
}

// Navigation tells the client which document to open next.
type Navigation struct {
	Doctype      string `json:"doctype"`
	Name         string `json:"name,omitempty"`
	Route        string `json:"route"`
	HandoffToken string `json:"handoff_token,omitempty"`
}

func newView(rec *domain.Application, out domain.Outcome) *FormView {
	return &FormView{
		Application: rec,
		IsNew:       rec.IsNew(),
		Fields:      out.Fields,
		Actions:     out.Actions,
		Primary:     out.Primary,
		Mutations:   out.Mutations,
		Warnings:    out.Warnings,
		Failures:    out.Failures,
	}
}
