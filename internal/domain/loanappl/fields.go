package loanappl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	FieldStatus                   = "status"
	FieldPostingDate              = "posting_date"
	FieldPartyType                = "party_type"
	FieldParty                    = "party"
	FieldPartyName                = "party_name"
	FieldCurrency                 = "currency"
	FieldOwner                    = "owner"
	FieldApprover                 = "approver"
	FieldApproverName             = "approver_name"
	FieldRequestedGrossAmount     = "requested_gross_amount"
	FieldApprovedGrossAmount      = "approved_gross_amount"
	FieldLegalExpensesRate        = "legal_expenses_rate"
	FieldLegalExpensesAmount      = "legal_expenses_amount"
	FieldRequestedNetAmount       = "requested_net_amount"
	FieldApprovedNetAmount        = "approved_net_amount"
	FieldRepaymentPeriods         = "repayment_periods"
	FieldRepaymentFrequency       = "repayment_frequency"
	FieldInterestRate             = "interest_rate"
	FieldInterestType             = "interest_type"
	FieldRepaymentDayOfTheMonth   = "repayment_day_of_the_month"
	FieldRepaymentDayOfTheWeek    = "repayment_day_of_the_week"
	FieldRepaymentDaysAfterCutoff = "repayment_days_after_cutoff"
	FieldLoanType                 = "loan_type"
	FieldLinkedLoan               = "linked_loan"
)

// coreFields are editable only by the owner or an approval-role actor.
var coreFields = []string{
	FieldPostingDate,
	FieldPartyType,
	FieldParty,
	FieldPartyName,
	FieldCurrency,
	FieldRequestedGrossAmount,
	FieldLegalExpensesRate,
	FieldRepaymentFrequency,
	FieldRepaymentPeriods,
	FieldInterestRate,
	FieldInterestType,
	FieldLoanType,
	FieldRepaymentDayOfTheMonth,
	FieldRepaymentDayOfTheWeek,
	FieldRepaymentDaysAfterCutoff,
}

// computedFields are maintained by the engine only.
var computedFields = map[string]bool{
	FieldStatus:              true,
	FieldOwner:               true,
	FieldApproverName:        true,
	FieldLegalExpensesAmount: true,
	FieldRequestedNetAmount:  true,
	FieldApprovedNetAmount:   true,
	FieldLinkedLoan:          true,
}

// Assign writes a raw form value into the named field. An empty value clears it.
func Assign(rec *Application, field, raw string) error {
	raw = strings.TrimSpace(raw)
	if computedFields[field] {
		return fmt.Errorf("%s: %w", field, ErrReadOnlyField)
	}

	switch field {
	case FieldPostingDate:
		if raw == "" {
			rec.PostingDate = time.Time{}
			return nil
		}
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return invalid(field, "must be a YYYY-MM-DD date")
		}
		rec.PostingDate = d
	case FieldPartyType:
		pt := PartyType(raw)
		if raw != "" && !pt.Valid() {
			return invalid(field, "must be one of Customer, Supplier, Employee")
		}
		rec.PartyType = pt
	case FieldParty:
		rec.Party = raw
	case FieldPartyName:
		rec.PartyName = raw
	case FieldCurrency:
		rec.Currency = strings.ToUpper(raw)
	case FieldApprover:
		rec.Approver = raw
	case FieldRequestedGrossAmount:
		return assignDecimal(field, &rec.RequestedGrossAmount, raw)
	case FieldApprovedGrossAmount:
		return assignDecimal(field, &rec.ApprovedGrossAmount, raw)
	case FieldLegalExpensesRate:
		return assignDecimal(field, &rec.LegalExpensesRate, raw)
	case FieldInterestRate:
		return assignDecimal(field, &rec.InterestRate, raw)
	case FieldRepaymentPeriods:
		return assignInt(field, &rec.RepaymentPeriods, raw)
	case FieldRepaymentDayOfTheMonth:
		return assignInt(field, &rec.RepaymentDayOfTheMonth, raw)
	case FieldRepaymentDaysAfterCutoff:
		return assignInt(field, &rec.RepaymentDaysAfterCutoff, raw)
	case FieldRepaymentDayOfTheWeek:
		rec.RepaymentDayOfTheWeek = raw
	case FieldRepaymentFrequency:
		f := Frequency(raw)
		if raw != "" && !f.Valid() {
			return invalid(field, "unknown repayment frequency")
		}
		rec.RepaymentFrequency = f
	case FieldInterestType:
		it := InterestType(raw)
		if raw != "" && it != InterestSimple && it != InterestCompound {
			return invalid(field, "must be Simple or Compound")
		}
		rec.InterestType = it
	case FieldLoanType:
		rec.LoanType = raw
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return nil
}

func assignDecimal(field string, dst *decimal.Decimal, raw string) error {
	if raw == "" {
		*dst = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return invalid(field, "must be a number")
	}
	if d.IsNegative() {
		return invalid(field, "cannot be negative")
	}
	*dst = d
	return nil
}

func assignInt(field string, dst *int, raw string) error {
	if raw == "" {
		*dst = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return invalid(field, "must be a whole number")
	}
	if n < 0 {
		return invalid(field, "cannot be negative")
	}
	*dst = n
	return nil
}

func invalid(field, msg string) error {
	return &ValidationError{Failures: []Failure{{Field: field, Kind: FailureInvalid, Message: field + " " + msg}}}
}
