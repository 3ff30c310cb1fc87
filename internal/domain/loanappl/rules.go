package loanappl

import (
	"github.com/shopspring/decimal"
)

// LoanTerms is the part of a loan type the application copies.
type LoanTerms struct {
	ID                       string
	Name                     string
	Enabled                  bool
	Currency                 string
	InterestType             InterestType
	InterestRate             decimal.Decimal // nominal, annual, percent
	LegalExpensesRate        decimal.Decimal
	RepaymentDayOfTheMonth   int
	RepaymentDayOfTheWeek    string
	RepaymentDaysAfterCutoff int
	RepaymentFrequency       Frequency
}

// PartyInfo is what a party lookup returns.
type PartyInfo struct {
	PartyType       PartyType
	Party           string
	Name            string
	DefaultCurrency string
}

func setApprover(c *ruleCtx) {
	if !c.actor.CanApprove() || c.rec.Approver != "" {
		return
	}
	c.setString(FieldApprover, &c.rec.Approver, c.actor.ID)
	c.setString(FieldApproverName, &c.rec.ApproverName, c.actor.FullName)
}

func setDefaultStatus(c *ruleCtx) {
	if c.rec.IsNew() {
		c.setString(FieldStatus, (*string)(&c.rec.Status), string(StatusOpen))
	}
}

func setDefaultRepaymentFrequency(c *ruleCtx) {
	if !c.rec.IsNew() || c.rec.RepaymentFrequency != "" || !c.settings.DefaultRepaymentFrequency.Valid() {
		return
	}
	c.setString(FieldRepaymentFrequency, (*string)(&c.rec.RepaymentFrequency), string(c.settings.DefaultRepaymentFrequency))
}

func clearParty(c *ruleCtx) {
	c.setString(FieldParty, &c.rec.Party, "")
	c.setString(FieldPartyName, &c.rec.PartyName, "")
}

// fetchParty drops the previous party's name before asking for the new one,
// so a failed lookup leaves it unset.
func fetchParty(c *ruleCtx) {
	c.setString(FieldPartyName, &c.rec.PartyName, "")
	if c.rec.Party == "" {
		return
	}
	if c.rec.PartyType == "" {
		c.fail(FieldPartyType, FailureMissing, "Missing Party Type")
		return
	}
	c.request(Effect{Kind: EffectFetchParty, PartyType: c.rec.PartyType, Party: c.rec.Party})
}

func fetchLoanType(c *ruleCtx) {
	if c.rec.LoanType == "" {
		return
	}
	c.request(Effect{Kind: EffectFetchLoanType, LoanType: c.rec.LoanType})
}

func fetchLoanTypeRate(c *ruleCtx) {
	if c.rec.LoanType == "" {
		return
	}
	c.request(Effect{Kind: EffectFetchLoanTypeRate, LoanType: c.rec.LoanType})
}

func clearApproverName(c *ruleCtx) {
	if c.rec.Approver == "" {
		c.setString(FieldApproverName, &c.rec.ApproverName, "")
	}
}

// ApplyParty feeds a party lookup result back into rec. Results for a party
// that is no longer selected are dropped.
func (e *Engine) ApplyParty(rec *Application, actor Actor, info PartyInfo, lookupErr error) Outcome {
	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	if rec.Party != info.Party || rec.PartyType != info.PartyType {
		return c.out
	}

	usesPartyCurrency := rec.PartyType == PartyCustomer || rec.PartyType == PartySupplier
	if lookupErr != nil {
		c.warn((&LookupFailure{What: "party name", Err: lookupErr}).Error())
		if usesPartyCurrency {
			c.warn((&LookupFailure{What: "party default currency", Err: lookupErr}).Error())
			c.setString(FieldCurrency, &rec.Currency, "")
		}
	} else {
		c.setString(FieldPartyName, &rec.PartyName, info.Name)
		currency := e.settings.DefaultCurrency
		if usesPartyCurrency && info.DefaultCurrency != "" {
			currency = info.DefaultCurrency
		}
		if currency != "" {
			c.setString(FieldCurrency, &rec.Currency, currency)
		}
	}
	if e.observer != nil {
		e.observer.RuleEvaluated(PhaseChange, "set_party_name")
	}
	c.out.Merge(e.Refresh(rec, actor))
	return c.out
}

// ApplyLoanType copies a looked-up loan type into rec. A disabled loan type is
// reverted and reported as a DisabledReferenceError failure.
func (e *Engine) ApplyLoanType(rec *Application, actor Actor, terms LoanTerms, lookupErr error) Outcome {
	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	if rec.LoanType != terms.ID {
		return c.out
	}

	switch {
	case lookupErr != nil:
		c.warn((&LookupFailure{What: "loan type", Err: lookupErr}).Error())
		c.setString(FieldLoanType, &rec.LoanType, "")
	case !terms.Enabled:
		c.setString(FieldLoanType, &rec.LoanType, "")
		c.fail(FieldLoanType, FailureDisabledReference,
			(&DisabledReferenceError{Doctype: "Loan Type", Name: terms.Name}).Error())
	default:
		c.setString(FieldCurrency, &rec.Currency, terms.Currency)
		c.setString(FieldInterestType, (*string)(&rec.InterestType), string(terms.InterestType))
		c.setDecimal(FieldLegalExpensesRate, &rec.LegalExpensesRate, terms.LegalExpensesRate)
		c.setInt(FieldRepaymentDayOfTheMonth, &rec.RepaymentDayOfTheMonth, terms.RepaymentDayOfTheMonth)
		c.setString(FieldRepaymentDayOfTheWeek, &rec.RepaymentDayOfTheWeek, terms.RepaymentDayOfTheWeek)
		c.setInt(FieldRepaymentDaysAfterCutoff, &rec.RepaymentDaysAfterCutoff, terms.RepaymentDaysAfterCutoff)
		c.setString(FieldRepaymentFrequency, (*string)(&rec.RepaymentFrequency), string(terms.RepaymentFrequency))
		applyInterestRate(c, terms)
		// legal_expenses_rate moved, so the amounts follow
		calculateLoanAmount(c)
	}

	if e.observer != nil {
		e.observer.RuleEvaluated(PhaseChange, "apply_loan_type")
		for _, f := range c.out.Failures {
			e.observer.FailureRaised(f)
		}
	}
	c.out.Merge(e.Refresh(rec, actor))
	return c.out
}

// ApplyLoanTypeRate re-derives interest_rate after the repayment frequency changed.
func (e *Engine) ApplyLoanTypeRate(rec *Application, actor Actor, terms LoanTerms, lookupErr error) Outcome {
	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	if rec.LoanType != terms.ID {
		return c.out
	}
	if lookupErr != nil {
		c.warn((&LookupFailure{What: "loan type", Err: lookupErr}).Error())
	} else {
		applyInterestRate(c, terms)
	}
	c.out.Merge(e.Refresh(rec, actor))
	return c.out
}

func applyInterestRate(c *ruleCtx, terms LoanTerms) {
	rate, ok := PeriodicInterestRate(terms.InterestRate, c.rec.RepaymentFrequency)
	if !ok {
		c.warn("Select a repayment frequency to derive the interest rate")
		return
	}
	c.setDecimal(FieldInterestRate, &c.rec.InterestRate, rate)
}
