package party

import (
	"context"
	"fmt"
	"strings"

	"loanappl-backend/internal/domain/handoff"
	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/party"
	applUC "loanappl-backend/internal/usecase/loanappl"
	"loanappl-backend/pkg/id"

	"go.uber.org/zap"
)

// HandoffReceiver takes a new party back into the application that asked for it.
type HandoffReceiver interface {
	CompletePartyHandoff(ctx context.Context, actor loanappl.Actor, tok *handoff.Token, info loanappl.PartyInfo) (*applUC.FormView, *applUC.Navigation, error)
}

type Usecase struct {
	repo     party.Repository
	handoffs handoff.Store
	receiver HandoffReceiver
	log      *zap.Logger
}

func NewUsecase(r party.Repository, hs handoff.Store, recv HandoffReceiver, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, handoffs: hs, receiver: recv, log: log}
}

var idPrefix = map[loanappl.PartyType]string{
	loanappl.PartyCustomer: "CUST-",
	loanappl.PartySupplier: "SUPP-",
	loanappl.PartyEmployee: "EMP-",
}

// Create stores a party. With a handoff token the party is also written back
// into the parked application and the result carries where to go next.
func (u *Usecase) Create(ctx context.Context, actor loanappl.Actor, in CreatePartyInput) (*CreatePartyResult, error) {
	if !in.PartyType.Valid() {
		return nil, fmt.Errorf("party_type %q: %w", in.PartyType, ErrInvalidInput)
	}
	name := strings.TrimSpace(in.PartyName)
	if name == "" {
		return nil, fmt.Errorf("party_name is required: %w", ErrInvalidInput)
	}

	// the token is consumed only after the party is saved
	if in.HandoffToken != "" {
		t, err := u.handoffs.Peek(ctx, in.HandoffToken)
		if err != nil {
			return nil, err
		}
		if t.PartyType != in.PartyType {
			return nil, fmt.Errorf("handoff token is for %s, not %s: %w", t.PartyType, in.PartyType, ErrInvalidInput)
		}
	}

	p := &party.Party{
		PartyType:       in.PartyType,
		PartyID:         strings.TrimSpace(in.PartyID),
		PartyName:       name,
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(in.DefaultCurrency)),
	}
	if p.PartyID == "" {
		p.PartyID = idPrefix[p.PartyType] + id.NewID32()[:10]
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	res := &CreatePartyResult{Party: toDTO(p)}
	if in.HandoffToken == "" {
		return res, nil
	}
	tok, err := u.handoffs.Take(ctx, in.HandoffToken)
	if err != nil {
		u.log.Warn("party created but handoff token already used",
			zap.String("party_type", string(p.PartyType)),
			zap.String("party_id", p.PartyID),
			zap.Error(err))
		return nil, fmt.Errorf("party %s created, returning it to the application failed: %w", p.PartyID, err)
	}
	view, nav, err := u.receiver.CompletePartyHandoff(ctx, actor, tok, p.Info())
	if err != nil {
		u.log.Warn("party created but handoff failed",
			zap.String("party_type", string(p.PartyType)),
			zap.String("party_id", p.PartyID),
			zap.Error(err))
		return nil, fmt.Errorf("party %s created, returning it to the application failed: %w", p.PartyID, err)
	}
	res.Application = view
	res.Navigation = nav
	return res, nil
}

func (u *Usecase) Get(ctx context.Context, partyType loanappl.PartyType, partyID string) (*PartyDTO, error) {
	p, err := u.repo.Get(ctx, partyType, partyID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

func toDTO(p *party.Party) *PartyDTO {
	return &PartyDTO{
		PartyType:       p.PartyType,
		PartyID:         p.PartyID,
		PartyName:       p.PartyName,
		DefaultCurrency: p.DefaultCurrency,
		CreatedAt:       p.CreatedAt,
	}
}
