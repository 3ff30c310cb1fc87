package loan

import (
	"loanappl-backend/internal/domain/loanappl"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Repayment holds the figures of an evenly repaid loan, rounded to cents.
type Repayment struct {
	RepaymentAmount     decimal.Decimal
	TotalInterestAmount decimal.Decimal
	TotalPayableAmount  decimal.Decimal
}

// ComputeRepayment derives the repayment figures of capital lent at ratePct
// percent per period over periods repayments.
//
// Simple interest charges ratePct on the original capital every period.
// Compound interest is an annuity: equal payments that clear the declining
// balance, interest charged on what is still owed.
func ComputeRepayment(kind loanappl.InterestType, capital, ratePct decimal.Decimal, periods int) Repayment {
	if periods <= 0 || !capital.IsPositive() {
		return Repayment{}
	}
	n := decimal.NewFromInt(int64(periods))
	rate := ratePct.Div(hundred)

	var payment decimal.Decimal
	switch {
	case kind == loanappl.InterestCompound && rate.IsPositive():
		growth := rate.Add(decimal.NewFromInt(1)).Pow(n)
		payment = capital.Mul(rate).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	default:
		payment = capital.Div(n).Add(capital.Mul(rate))
	}

	payable := payment.Mul(n).Round(2)
	return Repayment{
		RepaymentAmount:     payment.Round(2),
		TotalPayableAmount:  payable,
		TotalInterestAmount: payable.Sub(capital.Round(2)),
	}
}
