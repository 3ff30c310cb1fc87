package loanappl

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen      Status = "Open"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
)

// DocStatus is the document-submission state.
type DocStatus int

const (
	DocDraft     DocStatus = 0
	DocSubmitted DocStatus = 1
	DocCancelled DocStatus = 2
)

type PartyType string

const (
	PartyCustomer PartyType = "Customer"
	PartySupplier PartyType = "Supplier"
	PartyEmployee PartyType = "Employee"
)

// PartyTypes is the fixed filter applied to the party_type reference field.
var PartyTypes = []PartyType{PartySupplier, PartyCustomer, PartyEmployee}

func (p PartyType) Valid() bool {
	for _, t := range PartyTypes {
		if p == t {
			return true
		}
	}
	return false
}

type Frequency string

const (
	FrequencyDaily        Frequency = "Daily"
	FrequencyWeekly       Frequency = "Weekly"
	FrequencyBiWeekly     Frequency = "Bi-Weekly"
	FrequencyMonthly      Frequency = "Monthly"
	FrequencyQuarterly    Frequency = "Quarterly"
	FrequencySemiAnnually Frequency = "Semi-Annually"
	FrequencyAnnually     Frequency = "Annually"
)

var periodsPerYear = map[Frequency]int64{
	FrequencyDaily:        365,
	FrequencyWeekly:       52,
	FrequencyBiWeekly:     26,
	FrequencyMonthly:      12,
	FrequencyQuarterly:    4,
	FrequencySemiAnnually: 2,
	FrequencyAnnually:     1,
}

// PeriodsPerYear returns how many repayments a year the frequency implies, 0 if unknown.
func (f Frequency) PeriodsPerYear() int64 { return periodsPerYear[f] }

func (f Frequency) Valid() bool { return f.PeriodsPerYear() > 0 }

type InterestType string

const (
	InterestSimple   InterestType = "Simple"
	InterestCompound InterestType = "Compound"
)

// Application is the loan-application record. Amounts and rates use zero as "unset".
type Application struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string    `gorm:"size:32;uniqueIndex:ux_loan_applications_application_id" json:"application_id"`
	Status        Status    `gorm:"size:16;default:'Open'" json:"status"`
	DocStatus     DocStatus `gorm:"column:docstatus;default:0" json:"docstatus"`
	PostingDate   time.Time `gorm:"type:date" json:"posting_date"`

	PartyType PartyType `gorm:"size:16" json:"party_type"`
	Party     string    `gorm:"size:64;index:idx_loan_applications_party" json:"party"`
	PartyName string    `gorm:"size:140" json:"party_name"`
	Currency  string    `gorm:"size:3" json:"currency"`

	Owner        string `gorm:"size:64;index" json:"owner"`
	Approver     string `gorm:"size:64" json:"approver"`
	ApproverName string `gorm:"size:140" json:"approver_name"`

	RequestedGrossAmount decimal.Decimal `gorm:"type:decimal(18,6)" json:"requested_gross_amount"`
	ApprovedGrossAmount  decimal.Decimal `gorm:"type:decimal(18,6)" json:"approved_gross_amount"`
	LegalExpensesRate    decimal.Decimal `gorm:"type:decimal(9,4)" json:"legal_expenses_rate"`
	LegalExpensesAmount  decimal.Decimal `gorm:"type:decimal(18,6)" json:"legal_expenses_amount"`
	RequestedNetAmount   decimal.Decimal `gorm:"type:decimal(18,6)" json:"requested_net_amount"`
	ApprovedNetAmount    decimal.Decimal `gorm:"type:decimal(18,6)" json:"approved_net_amount"`

	RepaymentPeriods         int             `json:"repayment_periods"`
	RepaymentFrequency       Frequency       `gorm:"size:16" json:"repayment_frequency"`
	InterestRate             decimal.Decimal `gorm:"type:decimal(12,6)" json:"interest_rate"`
	InterestType             InterestType    `gorm:"size:16" json:"interest_type"`
	RepaymentDayOfTheMonth   int             `json:"repayment_day_of_the_month"`
	RepaymentDayOfTheWeek    string          `gorm:"size:16" json:"repayment_day_of_the_week"`
	RepaymentDaysAfterCutoff int             `json:"repayment_days_after_cutoff"`

	LoanType   string `gorm:"size:64" json:"loan_type"`
	LinkedLoan string `gorm:"size:32" json:"linked_loan"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Application) TableName() string { return "loan_applications" }

// IsNew reports whether the record has never been persisted.
func (a *Application) IsNew() bool { return a.ID == 0 }

func (a *Application) IsSubmitted() bool { return a.DocStatus == DocSubmitted }
