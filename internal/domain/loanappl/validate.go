package loanappl

func validateLegalExpensesRate(c *ruleCtx) {
	if c.rec.LegalExpensesRate.IsZero() {
		c.fail(FieldLegalExpensesRate, FailureMissing, "Missing Legal Expenses Rate")
	}
}

func validateGrossAmounts(c *ruleCtx) {
	if !c.rec.ApprovedGrossAmount.IsZero() {
		return
	}
	if c.rec.RequestedGrossAmount.IsZero() {
		c.fail(FieldRequestedGrossAmount, FailureMissing, "Missing Requested Gross Amount")
		return
	}
	c.fail(FieldApprovedGrossAmount, FailureMissing, "Missing Approved Gross Amount")
}

func validateRepaymentPeriods(c *ruleCtx) {
	if c.rec.RepaymentPeriods == 0 {
		c.fail(FieldRepaymentPeriods, FailureMissing, "Missing Repayment Periods")
	}
}
