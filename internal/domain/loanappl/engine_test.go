package loanappl

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = "owner@example.com"

var (
	owner    = Actor{ID: ownerID, FullName: "Olga Owner"}
	approver = Actor{ID: "approver@example.com", FullName: "Ana Approver", Roles: []string{RoleLoanApprover}}
	clerk    = Actor{ID: "clerk@example.com", FullName: "Carl Clerk", Roles: []string{RoleLoanUser}}
)

func newTestEngine() *Engine {
	return NewEngine(Settings{DefaultRepaymentFrequency: FrequencyMonthly, DefaultCurrency: "USD"}, nil)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func persisted(mut func(a *Application)) *Application {
	a := &Application{ID: 1, ApplicationID: "a1", Owner: ownerID, Status: StatusOpen}
	if mut != nil {
		mut(a)
	}
	return a
}

func TestChange_OwnerScenario(t *testing.T) {
	e := newTestEngine()
	rec := persisted(func(a *Application) {
		a.LegalExpensesRate = dec("5")
		a.RepaymentPeriods = 12
	})

	require.NoError(t, Assign(rec, FieldRequestedGrossAmount, "1000"))
	out := e.Change(rec, owner, FieldRequestedGrossAmount)
	require.NoError(t, out.Err())

	assert.True(t, rec.ApprovedGrossAmount.Equal(dec("1000")), "approved gross %s", rec.ApprovedGrossAmount)
	assert.True(t, rec.LegalExpensesAmount.Equal(dec("50")), "legal expenses %s", rec.LegalExpensesAmount)
	assert.True(t, rec.RequestedNetAmount.Equal(dec("1050")), "requested net %s", rec.RequestedNetAmount)
	assert.True(t, rec.ApprovedNetAmount.Equal(dec("1050")), "approved net %s", rec.ApprovedNetAmount)
	assert.Contains(t, out.Mutations, Mutation{Field: FieldApprovedGrossAmount, Value: "1000"})
}

func TestChange_AmountInvariants(t *testing.T) {
	e := newTestEngine()
	cases := []struct{ gross, approved, rate string }{
		{"1000", "900", "5"},
		{"2500.50", "2500.50", "3.25"},
		{"1", "1", "0.5"},
		{"75000", "60000", "12"},
	}
	for _, tc := range cases {
		rec := persisted(func(a *Application) {
			a.RequestedGrossAmount = dec(tc.gross)
			a.ApprovedGrossAmount = dec(tc.approved)
			a.LegalExpensesRate = dec(tc.rate)
			a.RepaymentPeriods = 6
		})
		e.Change(rec, approver, FieldLegalExpensesRate)

		r := dec(tc.rate)
		wantLegal := dec(tc.approved).Mul(r).Div(decimal.NewFromInt(100))
		assert.True(t, rec.LegalExpensesAmount.Equal(wantLegal), "%+v legal=%s", tc, rec.LegalExpensesAmount)
		wantReqNet := dec(tc.gross).Mul(decimal.NewFromInt(1).Add(r.Div(decimal.NewFromInt(100))))
		assert.True(t, rec.RequestedNetAmount.Equal(wantReqNet), "%+v reqnet=%s", tc, rec.RequestedNetAmount)
		assert.True(t, rec.ApprovedNetAmount.Equal(rec.LegalExpensesAmount.Add(rec.ApprovedGrossAmount)), "%+v", tc)
	}
}

func TestChange_MissingInputResetsDerivedAmounts(t *testing.T) {
	e := newTestEngine()
	for _, field := range []string{FieldRequestedGrossAmount, FieldLegalExpensesRate, FieldRepaymentPeriods} {
		t.Run(field, func(t *testing.T) {
			rec := persisted(func(a *Application) {
				a.RequestedGrossAmount = dec("1000")
				a.ApprovedGrossAmount = dec("1000")
				a.LegalExpensesRate = dec("5")
				a.RepaymentPeriods = 12
				a.LegalExpensesAmount = dec("50")
				a.ApprovedNetAmount = dec("1050")
			})
			require.NoError(t, Assign(rec, field, ""))
			e.Change(rec, approver, field)

			assert.True(t, rec.LegalExpensesAmount.IsZero())
			assert.True(t, rec.ApprovedNetAmount.IsZero())
		})
	}
}

func TestChange_RepaymentPeriodsClearedRaisesFailure(t *testing.T) {
	e := newTestEngine()
	rec := persisted(nil)
	out := e.Change(rec, owner, FieldRepaymentPeriods)

	var ve *ValidationError
	require.ErrorAs(t, out.Err(), &ve)
	assert.Equal(t, "Missing Repayment Periods", ve.Failures[0].Message)
}

func TestChange_NonOwnerDoesNotSyncApprovedGross(t *testing.T) {
	e := newTestEngine()
	rec := persisted(func(a *Application) { a.RequestedGrossAmount = dec("1000") })
	e.Change(rec, approver, FieldRequestedGrossAmount)
	assert.True(t, rec.ApprovedGrossAmount.IsZero())
}

func TestChange_PartyTypeClearsParty(t *testing.T) {
	e := newTestEngine()
	rec := persisted(func(a *Application) {
		a.PartyType = PartySupplier
		a.Party = "SUP-1"
		a.PartyName = "Acme"
	})
	require.NoError(t, Assign(rec, FieldPartyType, string(PartyCustomer)))
	out := e.Change(rec, owner, FieldPartyType)

	assert.Empty(t, rec.Party)
	assert.Empty(t, rec.PartyName)
	assert.Empty(t, out.Effects)
}

func TestChange_PartyRequestsLookup(t *testing.T) {
	e := newTestEngine()
	rec := persisted(func(a *Application) { a.PartyType = PartyCustomer; a.Party = "CUST-1" })
	out := e.Change(rec, owner, FieldParty)

	require.Len(t, out.Effects, 1)
	assert.Equal(t, Effect{Kind: EffectFetchParty, PartyType: PartyCustomer, Party: "CUST-1"}, out.Effects[0])
}

func TestChange_PartyClearedClearsName(t *testing.T) {
	e := newTestEngine()
	rec := persisted(func(a *Application) { a.PartyType = PartyCustomer; a.PartyName = "Old" })
	out := e.Change(rec, owner, FieldParty)
	assert.Empty(t, rec.PartyName)
	assert.Empty(t, out.Effects)
}

func TestChange_NewPartyDropsPreviousName(t *testing.T) {
	e := newTestEngine()
	rec := persisted(func(a *Application) {
		a.PartyType = PartyCustomer
		a.Party = "C2"
		a.PartyName = "Cora"
		a.Currency = "EUR"
	})

	out := e.Change(rec, owner, FieldParty)
	assert.Empty(t, rec.PartyName)
	require.Len(t, out.Effects, 1)

	e.ApplyParty(rec, owner, PartyInfo{PartyType: PartyCustomer, Party: "C2"}, errors.New("not found"))
	assert.Equal(t, "C2", rec.Party)
	assert.Empty(t, rec.PartyName)
	assert.Empty(t, rec.Currency)
}

func TestScrub(t *testing.T) {
	e := newTestEngine()
	forged := func(owner string) *Application {
		return &Application{
			Owner:                owner,
			Status:               StatusOpen,
			PartyType:            PartyCustomer,
			Party:                "C1",
			RequestedGrossAmount: dec("1000"),
			ApprovedGrossAmount:  dec("999999"),
			LegalExpensesRate:    dec("5"),
			LegalExpensesAmount:  dec("1"),
			RequestedNetAmount:   dec("2"),
			ApprovedNetAmount:    dec("3"),
			RepaymentPeriods:     12,
			Approver:             "someone-else",
			ApproverName:         "Someone Else",
		}
	}

	t.Run("owner loses approval fields", func(t *testing.T) {
		rec := forged(clerk.ID)
		e.Scrub(rec, clerk)
		assert.True(t, rec.ApprovedGrossAmount.Equal(dec("1000")))
		assert.True(t, rec.LegalExpensesAmount.Equal(dec("50")))
		assert.True(t, rec.RequestedNetAmount.Equal(dec("1050")))
		assert.True(t, rec.ApprovedNetAmount.Equal(dec("1050")))
		assert.Empty(t, rec.Approver)
		assert.Empty(t, rec.ApproverName)
		assert.Equal(t, "C1", rec.Party)
	})

	t.Run("approver keeps them", func(t *testing.T) {
		rec := forged(approver.ID)
		e.Scrub(rec, approver)
		assert.True(t, rec.ApprovedGrossAmount.Equal(dec("999999")))
		assert.True(t, rec.ApprovedNetAmount.Equal(dec("1049998.95")))
		assert.Equal(t, "someone-else", rec.Approver)
	})

	t.Run("stranger keeps nothing editable", func(t *testing.T) {
		rec := forged(ownerID)
		e.Scrub(rec, Actor{ID: "nobody"})
		assert.Empty(t, rec.Party)
		assert.True(t, rec.RequestedGrossAmount.IsZero())
		assert.True(t, rec.ApprovedGrossAmount.IsZero())
		assert.True(t, rec.ApprovedNetAmount.IsZero())
	})
}

func TestApplyParty(t *testing.T) {
	e := newTestEngine()

	t.Run("customer uses its default currency", func(t *testing.T) {
		rec := persisted(func(a *Application) { a.PartyType = PartyCustomer; a.Party = "C1" })
		out := e.ApplyParty(rec, owner, PartyInfo{PartyType: PartyCustomer, Party: "C1", Name: "Cora", DefaultCurrency: "EUR"}, nil)
		assert.Equal(t, "Cora", rec.PartyName)
		assert.Equal(t, "EUR", rec.Currency)
		assert.Empty(t, out.Warnings)
		assert.True(t, out.Fields[FieldPartyName].Visible)
	})

	t.Run("employee falls back to system currency", func(t *testing.T) {
		rec := persisted(func(a *Application) { a.PartyType = PartyEmployee; a.Party = "E1" })
		e.ApplyParty(rec, owner, PartyInfo{PartyType: PartyEmployee, Party: "E1", Name: "Eve", DefaultCurrency: "EUR"}, nil)
		assert.Equal(t, "USD", rec.Currency)
	})

	t.Run("lookup failure leaves fields unset and warns", func(t *testing.T) {
		rec := persisted(func(a *Application) { a.PartyType = PartySupplier; a.Party = "S1" })
		out := e.ApplyParty(rec, owner, PartyInfo{PartyType: PartySupplier, Party: "S1"}, errors.New("timeout"))
		assert.Empty(t, rec.PartyName)
		assert.Empty(t, rec.Currency)
		assert.Contains(t, out.Warnings, "There was a problem while loading the party name!")
		assert.NoError(t, out.Err())
	})

	t.Run("stale result is dropped", func(t *testing.T) {
		rec := persisted(func(a *Application) { a.PartyType = PartyCustomer; a.Party = "C2" })
		out := e.ApplyParty(rec, owner, PartyInfo{PartyType: PartyCustomer, Party: "C1", Name: "Cora"}, nil)
		assert.Empty(t, rec.PartyName)
		assert.Empty(t, out.Mutations)
	})
}

func TestApplyLoanType(t *testing.T) {
	e := newTestEngine()
	terms := LoanTerms{
		ID: "LT-1", Name: "Personal", Enabled: true, Currency: "DOP",
		InterestType: InterestSimple, InterestRate: dec("24"), LegalExpensesRate: dec("5"),
		RepaymentDayOfTheMonth: 15, RepaymentFrequency: FrequencyMonthly,
	}

	t.Run("copies terms and derives periodic rate", func(t *testing.T) {
		rec := persisted(func(a *Application) {
			a.LoanType = "LT-1"
			a.RequestedGrossAmount = dec("1000")
			a.ApprovedGrossAmount = dec("1000")
			a.RepaymentPeriods = 12
		})
		out := e.ApplyLoanType(rec, owner, terms, nil)
		require.NoError(t, out.Err())
		assert.Equal(t, "DOP", rec.Currency)
		assert.Equal(t, InterestSimple, rec.InterestType)
		assert.Equal(t, 15, rec.RepaymentDayOfTheMonth)
		assert.Equal(t, FrequencyMonthly, rec.RepaymentFrequency)
		assert.True(t, rec.InterestRate.Equal(dec("2")), "interest %s", rec.InterestRate)
		assert.True(t, rec.LegalExpensesAmount.Equal(dec("50")))
		assert.Equal(t, "Interest Rate (Monthly)", out.Fields[FieldInterestRate].Label)
	})

	t.Run("disabled loan type is reverted", func(t *testing.T) {
		rec := persisted(func(a *Application) { a.LoanType = "LT-1" })
		disabled := terms
		disabled.Enabled = false
		out := e.ApplyLoanType(rec, owner, disabled, nil)

		assert.Empty(t, rec.LoanType)
		err := out.Err()
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Loan Type: Personal is disabled.", err.Error())
		assert.Equal(t, FailureDisabledReference, out.Failures[0].Kind)
	})

	t.Run("frequency change re-derives rate only", func(t *testing.T) {
		rec := persisted(func(a *Application) {
			a.LoanType = "LT-1"
			a.RepaymentFrequency = FrequencyQuarterly
			a.Currency = "USD"
		})
		out := e.Change(rec, owner, FieldRepaymentFrequency)
		require.Len(t, out.Effects, 1)
		assert.Equal(t, EffectFetchLoanTypeRate, out.Effects[0].Kind)

		e.ApplyLoanTypeRate(rec, owner, terms, nil)
		assert.True(t, rec.InterestRate.Equal(dec("6")))
		assert.Equal(t, FrequencyQuarterly, rec.RepaymentFrequency)
		assert.Equal(t, "USD", rec.Currency)
	})
}

func TestLoad(t *testing.T) {
	e := newTestEngine()

	t.Run("approver auto-assigned", func(t *testing.T) {
		rec := persisted(nil)
		e.Load(rec, approver)
		assert.Equal(t, approver.ID, rec.Approver)
		assert.Equal(t, approver.FullName, rec.ApproverName)
	})

	t.Run("existing approver kept", func(t *testing.T) {
		rec := persisted(func(a *Application) { a.Approver = "someone-else" })
		e.Load(rec, approver)
		assert.Equal(t, "someone-else", rec.Approver)
	})

	t.Run("non approver never assigned", func(t *testing.T) {
		rec := persisted(nil)
		e.Load(rec, clerk)
		assert.Empty(t, rec.Approver)
	})

	t.Run("new record gets both defaults", func(t *testing.T) {
		rec := &Application{Owner: ownerID}
		out := e.Load(rec, owner)
		assert.Equal(t, StatusOpen, rec.Status)
		assert.Equal(t, FrequencyMonthly, rec.RepaymentFrequency)
		assert.Equal(t, GroupNew, out.Primary)
		assert.True(t, out.Has(ActionNewCustomer))
		assert.True(t, out.Has(ActionNewSupplier))
		assert.True(t, out.Has(ActionNewEmployee))
	})
}

func TestValidate(t *testing.T) {
	e := newTestEngine()
	complete := func(a *Application) {
		a.RequestedGrossAmount = dec("1000")
		a.ApprovedGrossAmount = dec("1000")
		a.LegalExpensesRate = dec("5")
		a.RepaymentPeriods = 12
	}

	tests := []struct {
		name string
		mut  func(a *Application)
		want []string
	}{
		{"complete", nil, nil},
		{"missing rate", func(a *Application) { a.LegalExpensesRate = decimal.Zero }, []string{"Missing Legal Expenses Rate"}},
		{"missing approved", func(a *Application) { a.ApprovedGrossAmount = decimal.Zero }, []string{"Missing Approved Gross Amount"}},
		{"missing both amounts", func(a *Application) {
			a.ApprovedGrossAmount = decimal.Zero
			a.RequestedGrossAmount = decimal.Zero
		}, []string{"Missing Requested Gross Amount"}},
		{"missing periods", func(a *Application) { a.RepaymentPeriods = 0 }, []string{"Missing Repayment Periods"}},
		{"everything missing", func(a *Application) { *a = Application{ID: 1} }, []string{
			"Missing Legal Expenses Rate", "Missing Requested Gross Amount", "Missing Repayment Periods",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := persisted(complete)
			if tt.mut != nil {
				tt.mut(rec)
			}
			out := e.Validate(rec, owner)
			var got []string
			for _, f := range out.Failures {
				got = append(got, f.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActions(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		actor    Actor
		mut      func(a *Application)
		want     []ActionName
		primary  ActionGroup
	}{
		{"approver on submitted open", Settings{}, approver,
			func(a *Application) { a.DocStatus = DocSubmitted }, []ActionName{ActionApprove, ActionDeny}, GroupAction},
		{"clerk on submitted open", Settings{}, clerk,
			func(a *Application) { a.DocStatus = DocSubmitted }, nil, ""},
		{"approver on draft", Settings{}, approver, nil, nil, ""},
		{"approved without loan", Settings{}, approver,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusApproved },
			[]ActionName{ActionApprove, ActionDeny, ActionMakeLoan}, GroupLoan},
		{"clerk sees make loan", Settings{}, clerk,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusApproved },
			[]ActionName{ActionMakeLoan}, GroupLoan},
		{"linked loan shows view", Settings{}, approver,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusApproved; a.LinkedLoan = "L1" },
			[]ActionName{ActionViewLoan}, GroupLoan},
		{"rejected stays closed", Settings{}, approver,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusRejected }, nil, ""},
		{"rejected reopens with allow change", Settings{AllowChangeAction: true}, approver,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusRejected },
			[]ActionName{ActionApprove, ActionDeny}, GroupAction},
		{"completed never", Settings{AllowChangeAction: true}, approver,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusCompleted }, nil, ""},
		{"no role no loan actions", Settings{}, owner,
			func(a *Application) { a.DocStatus = DocSubmitted; a.Status = StatusApproved }, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.settings, nil)
			out := e.Refresh(persisted(tt.mut), tt.actor)
			var got []ActionName
			for _, a := range out.Actions {
				got = append(got, a.Name)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.primary, out.Primary)
		})
	}
}

func TestFieldStates(t *testing.T) {
	e := newTestEngine()

	out := e.Refresh(persisted(nil), clerk)
	assert.False(t, out.Fields[FieldRequestedGrossAmount].Enabled)
	assert.False(t, out.Fields[FieldRepaymentPeriods].Enabled)
	assert.False(t, out.Fields[FieldApprovedGrossAmount].Enabled)

	out = e.Refresh(persisted(nil), owner)
	assert.True(t, out.Fields[FieldRequestedGrossAmount].Enabled)
	assert.False(t, out.Fields[FieldApprovedGrossAmount].Enabled)
	assert.False(t, out.Fields[FieldLegalExpensesAmount].Enabled)

	out = e.Refresh(persisted(nil), approver)
	assert.True(t, out.Fields[FieldRequestedGrossAmount].Enabled)
	assert.True(t, out.Fields[FieldApprovedGrossAmount].Enabled)

	for _, st := range []Status{StatusApproved, StatusRejected} {
		out = e.Refresh(persisted(func(a *Application) { a.Status = st }), approver)
		assert.False(t, out.Fields[FieldApprovedGrossAmount].Enabled, st)
	}

	out = e.Refresh(persisted(func(a *Application) { a.LinkedLoan = "L1" }), owner)
	assert.False(t, out.Fields[FieldParty].Enabled)

	out = e.Refresh(persisted(func(a *Application) { a.Party = "X"; a.PartyName = "X" }), owner)
	assert.False(t, out.Fields[FieldPartyName].Visible)
}

func TestTransition(t *testing.T) {
	e := newTestEngine()

	rec := persisted(func(a *Application) { a.DocStatus = DocSubmitted })
	_, err := e.Transition(rec, clerk, ActionApprove)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.Transition(persisted(nil), approver, ActionApprove)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	out, err := e.Transition(rec, approver, ActionDeny)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Empty(t, out.Actions)

	_, err = e.Transition(rec, approver, ActionApprove)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

type countingObserver struct {
	rules    map[string]int
	failures []Failure
}

func (o *countingObserver) RuleEvaluated(p Phase, name string) { o.rules[string(p)+":"+name]++ }
func (o *countingObserver) FailureRaised(f Failure) { o.failures = append(o.failures, f) }

func TestObserverSeesRulesAndFailures(t *testing.T) {
	obs := &countingObserver{rules: map[string]int{}}
	e := NewEngine(Settings{}, obs)
	e.Validate(persisted(nil), owner)

	assert.Equal(t, 1, obs.rules["validate:validate_legal_expenses_rate"])
	assert.Len(t, obs.failures, 3)
}
