package party

import (
	"errors"
	"time"

	"loanappl-backend/internal/domain/loanappl"
	applUC "loanappl-backend/internal/usecase/loanappl"
)

var ErrInvalidInput = errors.New("invalid input")

type CreatePartyInput struct {
	PartyType       loanappl.PartyType
	PartyID         string
	PartyName       string
	DefaultCurrency string
	HandoffToken    string
}

type PartyDTO struct {
	PartyType       loanappl.PartyType `json:"party_type"`
	PartyID         string             `json:"party_id"`
	PartyName       string             `json:"party_name"`
	DefaultCurrency string             `json:"default_currency,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

type CreatePartyResult struct {
	Party       *PartyDTO          `json:"party"`
	Application *applUC.FormView   `json:"application,omitempty"`
	Navigation  *applUC.Navigation `json:"navigation,omitempty"`
}
