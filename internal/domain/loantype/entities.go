package loantype

import (
	"errors"
	"time"

	"loanappl-backend/internal/domain/loanappl"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("loan type not found")
	ErrAlreadyExists = errors.New("loan type already exists")
)

// LoanType is a template supplying default rate and schedule fields.
type LoanType struct {
	ID                       uint64                `gorm:"primaryKey;column:id" json:"-"`
	LoanTypeID               string                `gorm:"size:64;uniqueIndex:ux_loan_types_loan_type_id" json:"loan_type_id"`
	LoanName                 string                `gorm:"size:140" json:"loan_name"`
	Enabled                  bool                  `gorm:"default:true" json:"enabled"`
	Currency                 string                `gorm:"size:3" json:"currency"`
	InterestType             loanappl.InterestType `gorm:"size:16" json:"interest_type"`
	InterestRate             decimal.Decimal       `gorm:"type:decimal(12,6)" json:"interest_rate"`
	LegalExpensesRate        decimal.Decimal       `gorm:"type:decimal(9,4)" json:"legal_expenses_rate"`
	RepaymentDayOfTheMonth   int                   `json:"repayment_day_of_the_month"`
	RepaymentDayOfTheWeek    string                `gorm:"size:16" json:"repayment_day_of_the_week"`
	RepaymentDaysAfterCutoff int                   `json:"repayment_days_after_cutoff"`
	RepaymentFrequency       loanappl.Frequency    `gorm:"size:16" json:"repayment_frequency"`
	CreatedAt                time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt                gorm.DeletedAt        `gorm:"index" json:"-"`
}

func (LoanType) TableName() string { return "loan_types" }

// Terms is the view of the loan type the application rules consume.
func (lt *LoanType) Terms() loanappl.LoanTerms {
	return loanappl.LoanTerms{
		ID:                       lt.LoanTypeID,
		Name:                     lt.LoanName,
		Enabled:                  lt.Enabled,
		Currency:                 lt.Currency,
		InterestType:             lt.InterestType,
		InterestRate:             lt.InterestRate,
		LegalExpensesRate:        lt.LegalExpensesRate,
		RepaymentDayOfTheMonth:   lt.RepaymentDayOfTheMonth,
		RepaymentDayOfTheWeek:    lt.RepaymentDayOfTheWeek,
		RepaymentDaysAfterCutoff: lt.RepaymentDaysAfterCutoff,
		RepaymentFrequency:       lt.RepaymentFrequency,
	}
}
