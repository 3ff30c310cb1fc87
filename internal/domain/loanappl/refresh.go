package loanappl

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ActionName string

const (
	ActionApprove     ActionName = "approve"
	ActionDeny        ActionName = "deny"
	ActionMakeLoan    ActionName = "make_loan"
	ActionViewLoan    ActionName = "view_loan"
	ActionNewCustomer ActionName = "new_customer"
	ActionNewSupplier ActionName = "new_supplier"
	ActionNewEmployee ActionName = "new_employee"
)

type ActionGroup string

const (
	GroupAction ActionGroup = "Action"
	GroupLoan   ActionGroup = "Loan"
	GroupNew    ActionGroup = "New"
)

// Action is a custom button offered to the actor.
type Action struct {
	Name  ActionName  `json:"name"`
	Label string      `json:"label"`
	Group ActionGroup `json:"group"`
}

// Has reports whether name is among the visible actions.
func (o Outcome) Has(name ActionName) bool {
	for _, a := range o.Actions {
		if a.Name == name {
			return true
		}
	}
	return false
}

func toggleFields(c *ruleCtx) {
	r := c.rec
	canEditCore := (c.actor.IsOwner(r) || c.actor.CanApprove()) && r.LinkedLoan == ""
	draft := r.DocStatus == DocDraft
	for _, f := range coreFields {
		c.patchField(f, func(fs *FieldState) { fs.Enabled = canEditCore && draft })
	}

	decided := r.Status == StatusApproved || r.Status == StatusRejected
	c.patchField(FieldApprovedGrossAmount, func(fs *FieldState) {
		fs.Enabled = c.actor.CanApprove() && !decided && r.DocStatus != DocCancelled
	})
	c.patchField(FieldApprover, func(fs *FieldState) {
		fs.Enabled = c.actor.CanApprove() && r.DocStatus != DocCancelled
	})

	for f := range computedFields {
		c.patchField(f, func(fs *FieldState) { fs.Enabled = false })
	}
}

// Scrub clears every field actor could not have edited on rec and derives the
// amounts again. Records built by a client pass through it before any rule runs.
func (e *Engine) Scrub(rec *Application, actor Actor) {
	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	toggleFields(c)
	for f, fs := range c.out.Fields {
		if fs.Enabled || computedFields[f] {
			continue
		}
		_ = Assign(rec, f, "")
	}
	if rec.Approver == "" {
		rec.ApproverName = ""
	}

	rec.LegalExpensesAmount = decimal.Zero
	rec.RequestedNetAmount = decimal.Zero
	rec.ApprovedNetAmount = decimal.Zero
	calculateLoanAmount(&ruleCtx{rec: rec, actor: actor, settings: e.settings})
}

func updateInterestRateLabel(c *ruleCtx) {
	label := "Interest Rate"
	if c.rec.RepaymentFrequency != "" {
		label = fmt.Sprintf("Interest Rate (%s)", c.rec.RepaymentFrequency)
	}
	c.patchField(FieldInterestRate, func(fs *FieldState) { fs.Label = label })
}

func showHidePartyName(c *ruleCtx) {
	c.patchField(FieldPartyName, func(fs *FieldState) { fs.Visible = c.rec.Party != c.rec.PartyName })
}

func addActions(c *ruleCtx) {
	r := c.rec

	if approveDenyAllowed(r, c.actor, c.settings) {
		c.out.Actions = append(c.out.Actions,
			Action{Name: ActionApprove, Label: "Approve", Group: GroupAction},
			Action{Name: ActionDeny, Label: "Deny", Group: GroupAction},
		)
		if r.Status != StatusApproved {
			c.out.Primary = GroupAction
		}
	}

	if r.IsSubmitted() && r.Status == StatusApproved && c.actor.CanManageLoans() {
		if r.LinkedLoan != "" {
			c.out.Actions = append(c.out.Actions, Action{Name: ActionViewLoan, Label: "View", Group: GroupLoan})
		} else {
			c.out.Actions = append(c.out.Actions, Action{Name: ActionMakeLoan, Label: "Make", Group: GroupLoan})
		}
		c.out.Primary = GroupLoan
	}

	if r.IsNew() {
		c.out.Actions = append(c.out.Actions,
			Action{Name: ActionNewCustomer, Label: "Customer", Group: GroupNew},
			Action{Name: ActionNewSupplier, Label: "Supplier", Group: GroupNew},
			Action{Name: ActionNewEmployee, Label: "Employee", Group: GroupNew},
		)
		c.out.Primary = GroupNew
	}
}

func approveDenyAllowed(r *Application, actor Actor, s Settings) bool {
	if !r.IsSubmitted() || !actor.CanApprove() {
		return false
	}
	switch r.Status {
	case StatusOpen:
		return true
	case StatusApproved:
		return r.LinkedLoan == ""
	case StatusRejected:
		return s.AllowChangeAction
	default:
		return false
	}
}

// Transition applies approve or deny. It is allowed only when the matching
// action is visible to actor.
func (e *Engine) Transition(rec *Application, actor Actor, action ActionName) (Outcome, error) {
	var to Status
	switch action {
	case ActionApprove:
		to = StatusApproved
	case ActionDeny:
		to = StatusRejected
	default:
		return Outcome{}, fmt.Errorf("%s: %w", action, ErrInvalidTransition)
	}
	if !actor.CanApprove() {
		return Outcome{}, ErrForbidden
	}
	if !approveDenyAllowed(rec, actor, e.settings) {
		return Outcome{}, fmt.Errorf("%s from %s: %w", action, rec.Status, ErrInvalidTransition)
	}

	c := &ruleCtx{rec: rec, actor: actor, settings: e.settings}
	c.setString(FieldStatus, (*string)(&rec.Status), string(to))
	if e.observer != nil {
		e.observer.RuleEvaluated(PhaseChange, string(action))
	}
	c.out.Merge(e.Refresh(rec, actor))
	return c.out, nil
}
