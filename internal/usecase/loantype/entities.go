package loantype

import (
	"errors"

	"loanappl-backend/internal/domain/loanappl"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid input")

type CreateLoanTypeInput struct {
	LoanTypeID               string
	LoanName                 string
	Currency                 string
	InterestType             loanappl.InterestType
	InterestRate             decimal.Decimal
	LegalExpensesRate        decimal.Decimal
	RepaymentDayOfTheMonth   int
	RepaymentDayOfTheWeek    string
	RepaymentDaysAfterCutoff int
	RepaymentFrequency       loanappl.Frequency
}
