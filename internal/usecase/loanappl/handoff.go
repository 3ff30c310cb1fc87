package loanappl

import (
	"context"
	"fmt"
	"net/url"

	"loanappl-backend/internal/domain/handoff"
	domain "loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/uow"
	"loanappl-backend/pkg/id"

	"go.uber.org/zap"
)

// HandoffInput names the application waiting for a new party: either a
// persisted one by id, or the unsaved draft itself.
type HandoffInput struct {
	PartyType     domain.PartyType
	ApplicationID string
	Draft         *domain.Application
}

// StartPartyHandoff parks the application behind a single-use token and
// returns where to create the new party.
func (u *Usecase) StartPartyHandoff(ctx context.Context, actor domain.Actor, in HandoffInput) (*Navigation, error) {
	if !in.PartyType.Valid() {
		return nil, &domain.ValidationError{Failures: []domain.Failure{{
			Field: domain.FieldPartyType, Kind: domain.FailureInvalid,
			Message: fmt.Sprintf("Party Type %q is not allowed", in.PartyType),
		}}}
	}

	tok := &handoff.Token{
		ID:        id.NewToken(),
		PartyType: in.PartyType,
		ActorID:   actor.ID,
		CreatedAt: u.now(),
	}
	switch {
	case in.ApplicationID != "":
		rec, err := u.apps.GetByApplicationID(ctx, in.ApplicationID)
		if err != nil {
			return nil, err
		}
		if fs := u.engine.Refresh(rec, actor).Fields[domain.FieldParty]; !fs.Enabled {
			return nil, fmt.Errorf("%s: %w", domain.FieldParty, domain.ErrReadOnlyField)
		}
		tok.ApplicationID = rec.ApplicationID
	case in.Draft != nil:
		u.sanitizeDraft(in.Draft, actor)
		tok.Draft = in.Draft
	default:
		return nil, fmt.Errorf("application_id or application is required: %w", domain.ErrValidation)
	}

	if err := u.handoffs.Put(ctx, tok, u.handoffTTL); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("party_type", string(in.PartyType))
	q.Set("handoff_token", tok.ID)
	return &Navigation{
		Doctype:      string(in.PartyType),
		Route:        "/parties/new?" + q.Encode(),
		HandoffToken: tok.ID,
	}, nil
}

// CompletePartyHandoff writes a freshly created party back into the
// application the token was parked for.
func (u *Usecase) CompletePartyHandoff(ctx context.Context, actor domain.Actor, tok *handoff.Token, info domain.PartyInfo) (*FormView, *Navigation, error) {
	if tok.ActorID != actor.ID {
		return nil, nil, domain.ErrForbidden
	}
	if tok.PartyType != info.PartyType {
		return nil, nil, fmt.Errorf("token is for %s, party is %s: %w", tok.PartyType, info.PartyType, domain.ErrValidation)
	}

	if tok.ApplicationID == "" {
		if tok.Draft == nil {
			return nil, nil, fmt.Errorf("token carries no application: %w", handoff.ErrTokenNotFound)
		}
		rec := tok.Draft
		u.sanitizeDraft(rec, actor)
		out, err := u.setParty(rec, actor, info)
		if err != nil {
			return nil, nil, err
		}
		return newView(rec, out), &Navigation{Doctype: "Loan Application", Route: "/loan-applications/form"}, nil
	}

	var view *FormView
	err := u.uow.WithinApplicationTx(ctx, tok.ApplicationID, func(r uow.Repos, rec *domain.Application) error {
		out, err := u.setParty(rec, actor, info)
		if err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, rec); err != nil {
			return err
		}
		view = newView(rec, out)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	u.log.Info("party handed back to application",
		zap.String("application_id", tok.ApplicationID),
		zap.String("party_type", string(info.PartyType)),
		zap.String("party", info.Party))
	return view, &Navigation{
		Doctype: "Loan Application",
		Name:    tok.ApplicationID,
		Route:   "/loan-applications/" + tok.ApplicationID,
	}, nil
}

// setParty runs the same chain as editing party_type then party, feeding the
// known party straight in instead of looking it up.
func (u *Usecase) setParty(rec *domain.Application, actor domain.Actor, info domain.PartyInfo) (domain.Outcome, error) {
	if fs := u.engine.Refresh(rec, actor).Fields[domain.FieldParty]; !fs.Enabled {
		return domain.Outcome{}, fmt.Errorf("%s: %w", domain.FieldParty, domain.ErrReadOnlyField)
	}
	if err := domain.Assign(rec, domain.FieldPartyType, string(info.PartyType)); err != nil {
		return domain.Outcome{}, err
	}
	out := u.engine.Change(rec, actor, domain.FieldPartyType)
	if err := domain.Assign(rec, domain.FieldParty, info.Party); err != nil {
		return domain.Outcome{}, err
	}
	out.Merge(u.engine.Change(rec, actor, domain.FieldParty))
	out.Effects = nil
	out.Merge(u.engine.ApplyParty(rec, actor, info, nil))
	return out, nil
}
