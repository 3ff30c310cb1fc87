package loanappl

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Phase is the lifecycle point a rule reacts to.
type Phase string

const (
	PhaseLoad     Phase = "load"
	PhaseRefresh  Phase = "refresh"
	PhaseChange   Phase = "change"
	PhaseValidate Phase = "validate"
)

// Settings are deployment-wide defaults consumed by the rules.
type Settings struct {
	DefaultRepaymentFrequency Frequency
	DefaultCurrency           string
	// Lets approvers flip an already decided application.
	AllowChangeAction bool
}

// Observer is notified of every rule run and failure.
type Observer interface {
	RuleEvaluated(phase Phase, rule string)
	FailureRaised(f Failure)
}

type Mutation struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type FieldState struct {
	Enabled bool   `json:"enabled"`
	Visible bool   `json:"visible"`
	Label   string `json:"label,omitempty"`
}

type EffectKind string

const (
	EffectFetchParty        EffectKind = "fetch_party"
	EffectFetchLoanType     EffectKind = "fetch_loan_type"
	EffectFetchLoanTypeRate EffectKind = "fetch_loan_type_rate"
)

// Effect is a side effect the rules request; the caller performs it and
// feeds the result back through ApplyParty or ApplyLoanType.
type Effect struct {
	Kind      EffectKind `json:"kind"`
	PartyType PartyType  `json:"party_type,omitempty"`
	Party     string     `json:"party,omitempty"`
	LoanType  string     `json:"loan_type,omitempty"`
}

// Outcome is everything one rule chain produced.
type Outcome struct {
	Mutations []Mutation            `json:"mutations,omitempty"`
	Fields    map[string]FieldState `json:"fields,omitempty"`
	Actions   []Action              `json:"actions,omitempty"`
	Primary   ActionGroup           `json:"primary_group,omitempty"`
	Failures  []Failure             `json:"failures,omitempty"`
	Warnings  []string              `json:"warnings,omitempty"`
	Effects   []Effect              `json:"effects,omitempty"`
}

// Err returns a *ValidationError when any failure was raised.
func (o Outcome) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	return &ValidationError{Failures: o.Failures}
}

// Merge folds a later outcome into o. Refresh data from the later one wins.
func (o *Outcome) Merge(next Outcome) {
	o.Mutations = append(o.Mutations, next.Mutations...)
	o.Failures = append(o.Failures, next.Failures...)
	o.Warnings = append(o.Warnings, next.Warnings...)
	o.Effects = append(o.Effects, next.Effects...)
	if next.Fields != nil {
		o.Fields = next.Fields
		o.Actions = next.Actions
		o.Primary = next.Primary
	}
}

type trigger struct {
	phase Phase
	field string
}

type rule struct {
	name string
	fn   func(c *ruleCtx)
}

// Engine is the loan-application rule table. It never performs I/O.
type Engine struct {
	settings Settings
	observer Observer
	rules    map[trigger][]rule
}

func NewEngine(s Settings, obs Observer) *Engine {
	e := &Engine{settings: s, observer: obs, rules: make(map[trigger][]rule)}

	e.on(PhaseLoad, "", "set_approver", setApprover)
	e.on(PhaseLoad, "", "set_default_status", setDefaultStatus)
	e.on(PhaseLoad, "", "set_default_repayment_frequency", setDefaultRepaymentFrequency)

	e.on(PhaseRefresh, "", "show_hide_fields_based_on_role", toggleFields)
	e.on(PhaseRefresh, "", "update_interest_rate_label", updateInterestRateLabel)
	e.on(PhaseRefresh, "", "show_hide_party_name", showHidePartyName)
	e.on(PhaseRefresh, "", "add_custom_buttons", addActions)

	e.on(PhaseChange, FieldRequestedGrossAmount, "update_approved_gross_amount", syncApprovedGross)
	e.on(PhaseChange, FieldRequestedGrossAmount, "calculate_loan_amount", calculateLoanAmount)
	e.on(PhaseChange, FieldApprovedGrossAmount, "calculate_loan_amount", calculateLoanAmount)
	e.on(PhaseChange, FieldLegalExpensesRate, "calculate_loan_amount", calculateLoanAmount)
	e.on(PhaseChange, FieldRepaymentPeriods, "validate_repayment_periods", validateRepaymentPeriods)
	e.on(PhaseChange, FieldRepaymentPeriods, "calculate_loan_amount", calculateLoanAmount)
	e.on(PhaseChange, FieldPartyType, "clear_party", clearParty)
	e.on(PhaseChange, FieldParty, "fetch_party", fetchParty)
	e.on(PhaseChange, FieldLoanType, "fetch_loan_type", fetchLoanType)
	e.on(PhaseChange, FieldRepaymentFrequency, "fetch_loan_type_rate", fetchLoanTypeRate)
	e.on(PhaseChange, FieldApprover, "clear_approver_name", clearApproverName)

	e.on(PhaseValidate, "", "validate_legal_expenses_rate", validateLegalExpensesRate)
	e.on(PhaseValidate, "", "validate_requested_gross_amount", validateGrossAmounts)
	e.on(PhaseValidate, "", "validate_repayment_periods", validateRepaymentPeriods)
	return e
}

func (e *Engine) on(p Phase, field, name string, fn func(c *ruleCtx)) {
	k := trigger{phase: p, field: field}
	e.rules[k] = append(e.rules[k], rule{name: name, fn: fn})
}

// Load runs the on-open rules followed by a refresh.
func (e *Engine) Load(rec *Application, actor Actor) Outcome {
	out := e.run(PhaseLoad, "", rec, actor)
	out.Merge(e.Refresh(rec, actor))
	return out
}

// Refresh recomputes field states and visible actions.
func (e *Engine) Refresh(rec *Application, actor Actor) Outcome {
	return e.run(PhaseRefresh, "", rec, actor)
}

// Change runs the reactions of field followed by a refresh. The caller has
// already written the new value into rec.
func (e *Engine) Change(rec *Application, actor Actor, field string) Outcome {
	out := e.run(PhaseChange, field, rec, actor)
	out.Merge(e.Refresh(rec, actor))
	return out
}

// Recalculate re-derives the amount fields from their inputs.
func (e *Engine) Recalculate(rec *Application, actor Actor) Outcome {
	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	calculateLoanAmount(c)
	if e.observer != nil {
		e.observer.RuleEvaluated(PhaseValidate, "calculate_loan_amount")
	}
	return c.out
}

// Validate runs the pre-save checks. Failures are collected, not short-circuited.
func (e *Engine) Validate(rec *Application, actor Actor) Outcome {
	return e.run(PhaseValidate, "", rec, actor)
}

func (e *Engine) run(p Phase, field string, rec *Application, actor Actor) Outcome {
	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	for _, r := range e.rules[trigger{phase: p, field: field}] {
		r.fn(c)
		if e.observer != nil {
			e.observer.RuleEvaluated(p, r.name)
		}
	}
	if e.observer != nil {
		for _, f := range c.out.Failures {
			e.observer.FailureRaised(f)
		}
	}
	return c.out
}

type ruleCtx struct {
	rec      *Application
	actor    Actor
	settings Settings
	out      Outcome
}

func (c *ruleCtx) fail(field string, kind FailureKind, msg string) {
	c.out.Failures = append(c.out.Failures, Failure{Field: field, Kind: kind, Message: msg})
}

func (c *ruleCtx) patchField(name string, fn func(fs *FieldState)) {
	if c.out.Fields == nil {
		c.out.Fields = make(map[string]FieldState)
	}
	fs, ok := c.out.Fields[name]
	if !ok {
		fs = FieldState{Enabled: true, Visible: true}
	}
	fn(&fs)
	c.out.Fields[name] = fs
}

func (c *ruleCtx) warn(msg string) { c.out.Warnings = append(c.out.Warnings, msg) }

func (c *ruleCtx) request(ef Effect) { c.out.Effects = append(c.out.Effects, ef) }

func (c *ruleCtx) setDecimal(field string, dst *decimal.Decimal, v decimal.Decimal) {
	if dst.Equal(v) {
		return
	}
	*dst = v
	c.out.Mutations = append(c.out.Mutations, Mutation{Field: field, Value: v.String()})
}

func (c *ruleCtx) setString(field string, dst *string, v string) {
	if *dst == v {
		return
	}
	*dst = v
	c.out.Mutations = append(c.out.Mutations, Mutation{Field: field, Value: v})
}

func (c *ruleCtx) setInt(field string, dst *int, v int) {
	if *dst == v {
		return
	}
	*dst = v
	c.out.Mutations = append(c.out.Mutations, Mutation{Field: field, Value: strconv.Itoa(v)})
}
