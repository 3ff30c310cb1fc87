package loanappl

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LegalExpensesAmount is approved gross × rate/100.
func LegalExpensesAmount(approvedGross, ratePct decimal.Decimal) decimal.Decimal {
	return approvedGross.Mul(ratePct).Div(hundred)
}

// RequestedNetAmount is requested gross × (1 + rate/100).
func RequestedNetAmount(requestedGross, ratePct decimal.Decimal) decimal.Decimal {
	return requestedGross.Mul(decimal.NewFromInt(1).Add(ratePct.Div(hundred)))
}

// ApprovedNetAmount is legal expenses + approved gross.
func ApprovedNetAmount(legalExpenses, approvedGross decimal.Decimal) decimal.Decimal {
	return legalExpenses.Add(approvedGross)
}

// PeriodicInterestRate spreads a nominal annual rate over the repayments of one year.
// ok is false when the frequency is unknown.
func PeriodicInterestRate(annualPct decimal.Decimal, f Frequency) (rate decimal.Decimal, ok bool) {
	n := f.PeriodsPerYear()
	if n == 0 {
		return decimal.Zero, false
	}
	return annualPct.Div(decimal.NewFromInt(n)), true
}

// The owner's requested amount becomes the approved amount until an approver
// sets one. Only a requested-amount edit, or an unset approved amount, syncs.
func syncApprovedGross(c *ruleCtx) {
	if !c.actor.IsOwner(c.rec) {
		return
	}
	c.setDecimal(FieldApprovedGrossAmount, &c.rec.ApprovedGrossAmount, c.rec.RequestedGrossAmount)
}

func calculateLoanAmount(c *ruleCtx) {
	r := c.rec
	if c.actor.IsOwner(r) && r.ApprovedGrossAmount.IsZero() {
		syncApprovedGross(c)
	}

	canProceed := !r.RequestedGrossAmount.IsZero() &&
		!r.LegalExpensesRate.IsZero() &&
		r.RepaymentPeriods != 0
	if !canProceed {
		c.setDecimal(FieldLegalExpensesAmount, &r.LegalExpensesAmount, decimal.Zero)
		c.setDecimal(FieldApprovedNetAmount, &r.ApprovedNetAmount, decimal.Zero)
		return
	}

	// each step reads the value written by the previous one
	c.setDecimal(FieldLegalExpensesAmount, &r.LegalExpensesAmount,
		LegalExpensesAmount(r.ApprovedGrossAmount, r.LegalExpensesRate))
	c.setDecimal(FieldRequestedNetAmount, &r.RequestedNetAmount,
		RequestedNetAmount(r.RequestedGrossAmount, r.LegalExpensesRate))
	c.setDecimal(FieldApprovedNetAmount, &r.ApprovedNetAmount,
		ApprovedNetAmount(r.LegalExpensesAmount, r.ApprovedGrossAmount))
}
