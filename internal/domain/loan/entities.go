package loan

import (
	"errors"
	"time"

	"loanappl-backend/internal/domain/loanappl"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("loan not found")

// Loan is the downstream record created from an approved application.
type Loan struct {
	ID                  uint64                `gorm:"primaryKey;column:id" json:"-"`
	LoanID              string                `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	ApplicationID       string                `gorm:"size:32;index:idx_loans_application" json:"loan_application"`
	PartyType           loanappl.PartyType    `gorm:"size:16" json:"party_type"`
	Party               string                `gorm:"size:64" json:"party"`
	PartyName           string                `gorm:"size:140" json:"party_name"`
	Currency            string                `gorm:"size:3" json:"currency"`
	LoanAmount          decimal.Decimal       `gorm:"type:decimal(18,6)" json:"loan_amount"`
	LegalExpensesAmount decimal.Decimal       `gorm:"type:decimal(18,6)" json:"legal_expenses_amount"`
	LentAmount          decimal.Decimal       `gorm:"type:decimal(18,6)" json:"lent_amount"`
	RepaymentAmount     decimal.Decimal       `gorm:"type:decimal(18,6)" json:"repayment_amount"`
	TotalInterestAmount decimal.Decimal       `gorm:"type:decimal(18,6)" json:"total_interest_amount"`
	TotalPayableAmount  decimal.Decimal       `gorm:"type:decimal(18,6)" json:"total_payable_amount"`
	InterestRate        decimal.Decimal       `gorm:"type:decimal(12,6)" json:"interest_rate"`
	InterestType        loanappl.InterestType `gorm:"size:16" json:"interest_type"`
	RepaymentPeriods    int                   `json:"repayment_periods"`
	RepaymentFrequency  loanappl.Frequency    `gorm:"size:16" json:"repayment_frequency"`
	DocStatus           loanappl.DocStatus    `gorm:"column:docstatus;default:0" json:"docstatus"`
	PostingDate         time.Time             `gorm:"type:date" json:"posting_date"`
	CreatedAt           time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt        `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// NewFromApplication drafts a loan carrying the application's approved terms
// and the repayment figures they imply.
func NewFromApplication(loanID string, a *loanappl.Application, postingDate time.Time) *Loan {
	l := &Loan{
		LoanID:              loanID,
		ApplicationID:       a.ApplicationID,
		PartyType:           a.PartyType,
		Party:               a.Party,
		PartyName:           a.PartyName,
		Currency:            a.Currency,
		LoanAmount:          a.ApprovedNetAmount,
		LegalExpensesAmount: a.LegalExpensesAmount,
		LentAmount:          a.ApprovedNetAmount.Sub(a.LegalExpensesAmount),
		InterestRate:        a.InterestRate,
		InterestType:        a.InterestType,
		RepaymentPeriods:    a.RepaymentPeriods,
		RepaymentFrequency:  a.RepaymentFrequency,
		DocStatus:           loanappl.DocDraft,
		PostingDate:         postingDate,
	}
	r := ComputeRepayment(l.InterestType, l.LoanAmount, l.InterestRate, l.RepaymentPeriods)
	l.RepaymentAmount = r.RepaymentAmount
	l.TotalInterestAmount = r.TotalInterestAmount
	l.TotalPayableAmount = r.TotalPayableAmount
	return l
}
