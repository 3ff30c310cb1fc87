package loanappl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loanappl-backend/internal/domain/handoff"
	"loanappl-backend/internal/domain/loan"
	domain "loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/loantype"
	"loanappl-backend/internal/domain/party"
	"loanappl-backend/internal/domain/uow"
	"loanappl-backend/pkg/id"

	"go.uber.org/zap"
)

// LoanTypeReader is the part of the loan-type catalogue the driver reads.
type LoanTypeReader interface {
	GetByLoanTypeID(ctx context.Context, loanTypeID string) (*loantype.LoanType, error)
}

// LookupObserver is told about every party or loan-type lookup that failed.
type LookupObserver interface {
	LookupFailed(kind domain.EffectKind)
}

type Deps struct {
	Engine       *domain.Engine
	Applications domain.Repository
	UoW          uow.UnitOfWork
	Parties      party.Directory
	LoanTypes    LoanTypeReader
	Handoffs     handoff.Store
	HandoffTTL   time.Duration
	Logger       *zap.Logger
	Lookups      LookupObserver
	Now          func() time.Time
}

type Usecase struct {
	engine     *domain.Engine
	apps       domain.Repository
	uow        uow.UnitOfWork
	parties    party.Directory
	loanTypes  LoanTypeReader
	handoffs   handoff.Store
	handoffTTL time.Duration
	log        *zap.Logger
	lookupObs  LookupObserver
	now        func() time.Time
	inflight   *lookupRegistry
}

func NewUsecase(d Deps) *Usecase {
	u := &Usecase{
		engine:     d.Engine,
		apps:       d.Applications,
		uow:        d.UoW,
		parties:    d.Parties,
		loanTypes:  d.LoanTypes,
		handoffs:   d.Handoffs,
		handoffTTL: d.HandoffTTL,
		log:        d.Logger,
		lookupObs:  d.Lookups,
		now:        d.Now,
		inflight:   newLookupRegistry(),
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	if u.handoffTTL <= 0 {
		u.handoffTTL = 30 * time.Minute
	}
	return u
}

func (u *Usecase) PartyTypes() []domain.PartyType {
	out := make([]domain.PartyType, len(domain.PartyTypes))
	copy(out, domain.PartyTypes)
	return out
}

// NewForm returns an unsaved application owned by actor with defaults applied.
func (u *Usecase) NewForm(ctx context.Context, actor domain.Actor) (*FormView, error) {
	rec := &domain.Application{}
	u.sanitizeDraft(rec, actor)
	out := u.engine.Load(rec, actor)
	return newView(rec, out), nil
}

// Change applies one field edit to an unsaved draft. On a *ValidationError
// the returned view still carries the reverted state.
func (u *Usecase) Change(ctx context.Context, actor domain.Actor, draft *domain.Application, field, value string) (*FormView, error) {
	if draft == nil {
		return nil, fmt.Errorf("missing application: %w", domain.ErrValidation)
	}
	u.sanitizeDraft(draft, actor)
	out, err := u.change(ctx, draftScope(actor), draft, actor, field, value)
	if err != nil {
		return nil, err
	}
	return newView(draft, out), out.Err()
}

// Create validates and persists a draft.
func (u *Usecase) Create(ctx context.Context, actor domain.Actor, draft *domain.Application) (*FormView, error) {
	if draft == nil {
		return nil, fmt.Errorf("missing application: %w", domain.ErrValidation)
	}
	rec := draft
	u.sanitizeDraft(rec, actor)
	rec.ApplicationID = id.NewID32()

	out := u.engine.Load(rec, actor)
	out.Merge(u.engine.Recalculate(rec, actor))
	if err := u.validateForSave(ctx, rec, actor); err != nil {
		return nil, err
	}
	if err := u.apps.Create(ctx, rec); err != nil {
		return nil, err
	}
	u.log.Info("loan application created",
		zap.String("application_id", rec.ApplicationID),
		zap.String("owner", rec.Owner))

	out.Merge(u.engine.Refresh(rec, actor))
	return newView(rec, out), nil
}

// Open loads a persisted application for actor.
func (u *Usecase) Open(ctx context.Context, actor domain.Actor, applicationID string) (*FormView, error) {
	rec, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	u.reconcileLinkedLoan(ctx, rec)
	out := u.engine.Load(rec, actor)
	return newView(rec, out), nil
}

// Edit applies one field edit to a persisted application and saves it. A
// non-zero in.UpdatedAt must match the stored record, otherwise the edit was
// made on a stale view and fails with ErrConflict.
func (u *Usecase) Edit(ctx context.Context, actor domain.Actor, applicationID string, in EditInput) (*FormView, error) {
	rec, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !in.UpdatedAt.IsZero() && !sameVersion(in.UpdatedAt, rec.UpdatedAt) {
		return nil, ErrConflict
	}
	loadedAt := rec.UpdatedAt

	out, err := u.change(ctx, applicationID, rec, actor, in.Field, in.Value)
	if err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return newView(rec, out), err
	}
	if err := u.engine.Validate(rec, actor).Err(); err != nil {
		return nil, err
	}

	err = u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, locked *domain.Application) error {
		if !locked.UpdatedAt.Equal(loadedAt) {
			return ErrConflict
		}
		return r.Applications.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return newView(rec, out), nil
}

func (u *Usecase) Submit(ctx context.Context, actor domain.Actor, applicationID string) (*FormView, error) {
	var view *FormView
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, rec *domain.Application) error {
		if !actor.IsOwner(rec) && !actor.CanApprove() {
			return domain.ErrForbidden
		}
		if rec.DocStatus != domain.DocDraft {
			return fmt.Errorf("submit from docstatus %d: %w", rec.DocStatus, domain.ErrInvalidTransition)
		}
		if err := u.validateForSave(ctx, rec, actor); err != nil {
			return err
		}
		rec.DocStatus = domain.DocSubmitted
		if err := r.Applications.Save(ctx, rec); err != nil {
			return err
		}
		view = newView(rec, u.engine.Refresh(rec, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (u *Usecase) Cancel(ctx context.Context, actor domain.Actor, applicationID string) (*FormView, error) {
	var view *FormView
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, rec *domain.Application) error {
		if !actor.IsOwner(rec) && !actor.CanApprove() {
			return domain.ErrForbidden
		}
		switch rec.DocStatus {
		case domain.DocCancelled:
			return domain.ErrCancelled
		case domain.DocDraft:
			return domain.ErrNotSubmitted
		}
		if _, err := r.Loans.GetActiveByApplicationID(ctx, rec.ApplicationID); err == nil {
			return domain.ErrLoanExists
		} else if !errors.Is(err, loan.ErrNotFound) {
			return err
		}
		rec.DocStatus = domain.DocCancelled
		if err := r.Applications.Save(ctx, rec); err != nil {
			return err
		}
		view = newView(rec, u.engine.Refresh(rec, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (u *Usecase) Approve(ctx context.Context, actor domain.Actor, applicationID string) (*FormView, error) {
	return u.transition(ctx, actor, applicationID, domain.ActionApprove)
}

func (u *Usecase) Deny(ctx context.Context, actor domain.Actor, applicationID string) (*FormView, error) {
	return u.transition(ctx, actor, applicationID, domain.ActionDeny)
}

func (u *Usecase) transition(ctx context.Context, actor domain.Actor, applicationID string, action domain.ActionName) (*FormView, error) {
	var view *FormView
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, rec *domain.Application) error {
		out, err := u.engine.Transition(rec, actor, action)
		if err != nil {
			return err
		}
		if rec.Approver == "" {
			rec.Approver, rec.ApproverName = actor.ID, actor.FullName
		}
		if err := r.Applications.Save(ctx, rec); err != nil {
			return err
		}
		view = newView(rec, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("loan application decided",
		zap.String("application_id", applicationID),
		zap.String("action", string(action)),
		zap.String("actor", actor.ID))
	return view, nil
}

// MakeLoan creates the downstream loan for an approved application.
func (u *Usecase) MakeLoan(ctx context.Context, actor domain.Actor, applicationID string) (*Navigation, error) {
	if !actor.CanManageLoans() {
		return nil, domain.ErrForbidden
	}
	var made *loan.Loan
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, rec *domain.Application) error {
		switch rec.DocStatus {
		case domain.DocDraft:
			return domain.ErrNotSubmitted
		case domain.DocCancelled:
			return domain.ErrCancelled
		}
		if rec.Status != domain.StatusApproved {
			return fmt.Errorf("make loan from %s: %w", rec.Status, domain.ErrInvalidTransition)
		}
		if rec.LinkedLoan != "" {
			return domain.ErrLoanExists
		}
		if _, err := r.Loans.GetActiveByApplicationID(ctx, rec.ApplicationID); err == nil {
			return domain.ErrLoanExists
		} else if !errors.Is(err, loan.ErrNotFound) {
			return err
		}

		made = loan.NewFromApplication(id.NewID32(), rec, u.now())
		if err := r.Loans.Create(ctx, made); err != nil {
			return err
		}
		rec.LinkedLoan = made.LoanID
		return r.Applications.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("loan made from application",
		zap.String("application_id", applicationID),
		zap.String("loan_id", made.LoanID))
	return loanNavigation(made.LoanID), nil
}

func (u *Usecase) ViewLoan(ctx context.Context, actor domain.Actor, applicationID string) (*Navigation, error) {
	if !actor.CanManageLoans() {
		return nil, domain.ErrForbidden
	}
	rec, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	u.reconcileLinkedLoan(ctx, rec)
	if rec.LinkedLoan == "" {
		return nil, domain.ErrLoanNotFound
	}
	return loanNavigation(rec.LinkedLoan), nil
}

func loanNavigation(loanID string) *Navigation {
	return &Navigation{Doctype: "Loan", Name: loanID, Route: "/loans/" + loanID}
}

// change writes value into rec and runs the resulting rule chain, performing
// any lookups the rules requested. scope groups lookups for cancellation.
func (u *Usecase) change(ctx context.Context, scope string, rec *domain.Application, actor domain.Actor, field, value string) (domain.Outcome, error) {
	if fs, ok := u.engine.Refresh(rec, actor).Fields[field]; ok && !fs.Enabled {
		return domain.Outcome{}, fmt.Errorf("%s: %w", field, domain.ErrReadOnlyField)
	}
	if err := domain.Assign(rec, field, value); err != nil {
		return domain.Outcome{}, err
	}
	out := u.engine.Change(rec, actor, field)
	if err := u.runEffects(ctx, scope, rec, actor, &out); err != nil {
		return domain.Outcome{}, err
	}
	return out, nil
}

func (u *Usecase) runEffects(ctx context.Context, scope string, rec *domain.Application, actor domain.Actor, out *domain.Outcome) error {
	pending := out.Effects
	out.Effects = nil
	for len(pending) > 0 {
		ef := pending[0]
		pending = pending[1:]

		next, err := u.perform(ctx, scope, rec, actor, ef)
		if err != nil {
			return err
		}
		pending = append(pending, next.Effects...)
		next.Effects = nil
		out.Merge(next)
	}
	return nil
}

func (u *Usecase) perform(ctx context.Context, scope string, rec *domain.Application, actor domain.Actor, ef domain.Effect) (domain.Outcome, error) {
	kind := "party"
	if ef.Kind != domain.EffectFetchParty {
		kind = "loan_type"
	}
	lctx, done := u.inflight.begin(ctx, scope+"/"+kind)
	defer done()

	switch ef.Kind {
	case domain.EffectFetchParty:
		info := domain.PartyInfo{PartyType: ef.PartyType, Party: ef.Party}
		p, err := u.parties.Get(lctx, ef.PartyType, ef.Party)
		if hard := u.checkLookup(ctx, lctx, ef, err); hard != nil {
			return domain.Outcome{}, hard
		}
		if err == nil {
			info = p.Info()
		}
		return u.engine.ApplyParty(rec, actor, info, err), nil

	case domain.EffectFetchLoanType, domain.EffectFetchLoanTypeRate:
		terms := domain.LoanTerms{ID: ef.LoanType}
		lt, err := u.loanTypes.GetByLoanTypeID(lctx, ef.LoanType)
		if hard := u.checkLookup(ctx, lctx, ef, err); hard != nil {
			return domain.Outcome{}, hard
		}
		if err == nil {
			terms = lt.Terms()
		}
		if ef.Kind == domain.EffectFetchLoanType {
			return u.engine.ApplyLoanType(rec, actor, terms, err), nil
		}
		return u.engine.ApplyLoanTypeRate(rec, actor, terms, err), nil

	default:
		return domain.Outcome{}, fmt.Errorf("unknown effect %q", ef.Kind)
	}
}

// checkLookup returns a non-nil error only when the whole change must stop:
// the request went away or a newer lookup superseded this one. Other lookup
// failures are logged and counted; the rules turn them into warnings.
func (u *Usecase) checkLookup(parent, lctx context.Context, ef domain.Effect, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if lctx.Err() != nil {
		return ErrSuperseded
	}
	if err == nil {
		return nil
	}
	u.log.Warn("lookup failed",
		zap.String("kind", string(ef.Kind)),
		zap.String("party_type", string(ef.PartyType)),
		zap.String("party", ef.Party),
		zap.String("loan_type", ef.LoanType),
		zap.Error(err))
	if u.lookupObs != nil {
		u.lookupObs.LookupFailed(ef.Kind)
	}
	return nil
}

// validateForSave runs the save checks plus a live check of the loan type.
func (u *Usecase) validateForSave(ctx context.Context, rec *domain.Application, actor domain.Actor) error {
	out := u.engine.Validate(rec, actor)
	if rec.LoanType != "" {
		lt, err := u.loanTypes.GetByLoanTypeID(ctx, rec.LoanType)
		switch {
		case errors.Is(err, loantype.ErrNotFound):
			out.Failures = append(out.Failures, domain.Failure{
				Field:   domain.FieldLoanType,
				Kind:    domain.FailureInvalid,
				Message: fmt.Sprintf("Loan Type %s not found", rec.LoanType),
			})
		case err != nil:
			return err
		case !lt.Enabled:
			out.Failures = append(out.Failures, domain.Failure{
				Field:   domain.FieldLoanType,
				Kind:    domain.FailureDisabledReference,
				Message: (&domain.DisabledReferenceError{Doctype: "Loan Type", Name: lt.LoanName}).Error(),
			})
		}
	}
	return out.Err()
}

// reconcileLinkedLoan fills linked_loan from the loans table when an approved
// application lost track of its loan.
func (u *Usecase) reconcileLinkedLoan(ctx context.Context, rec *domain.Application) {
	if rec.Status != domain.StatusApproved || rec.LinkedLoan != "" {
		return
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetActiveByApplicationID(ctx, rec.ApplicationID)
		if err != nil {
			return err
		}
		rec.LinkedLoan = l.LoanID
		return r.Applications.Save(ctx, rec)
	})
	if err != nil && !errors.Is(err, loan.ErrNotFound) {
		u.log.Warn("reconcile linked loan failed",
			zap.String("application_id", rec.ApplicationID), zap.Error(err))
	}
}

// sameVersion compares timestamps at the millisecond precision the database keeps.
func sameVersion(a, b time.Time) bool {
	return a.Truncate(time.Millisecond).Equal(b.Truncate(time.Millisecond))
}

// sanitizeDraft resets what a client may not decide for an unsaved record.
func (u *Usecase) sanitizeDraft(rec *domain.Application, actor domain.Actor) {
	rec.ID = 0
	rec.Owner = actor.ID
	rec.DocStatus = domain.DocDraft
	rec.Status = domain.StatusOpen
	rec.LinkedLoan = ""
	if rec.PostingDate.IsZero() {
		rec.PostingDate = u.now().Truncate(24 * time.Hour)
	}
	u.engine.Scrub(rec, actor)
}

func draftScope(actor domain.Actor) string { return "draft:" + actor.ID }
