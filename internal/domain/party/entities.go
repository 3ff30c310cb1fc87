package party

import (
	"errors"
	"time"

	"loanappl-backend/internal/domain/loanappl"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("party not found")
	ErrAlreadyExists = errors.New("party already exists")
)

// Party is a Customer, Supplier or Employee a loan can be issued against.
type Party struct {
	ID              uint64             `gorm:"primaryKey;column:id" json:"-"`
	PartyType       loanappl.PartyType `gorm:"size:16;uniqueIndex:ux_parties_type_id" json:"party_type"`
	PartyID         string             `gorm:"size:64;uniqueIndex:ux_parties_type_id" json:"party_id"`
	PartyName       string             `gorm:"size:140" json:"party_name"`
	DefaultCurrency string             `gorm:"size:3" json:"default_currency"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (Party) TableName() string { return "parties" }

func (p *Party) Info() loanappl.PartyInfo {
	return loanappl.PartyInfo{
		PartyType:       p.PartyType,
		Party:           p.PartyID,
		Name:            p.PartyName,
		DefaultCurrency: p.DefaultCurrency,
	}
}
