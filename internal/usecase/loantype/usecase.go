package loantype

import (
	"context"
	"fmt"
	"strings"

	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/loantype"

	"go.uber.org/zap"
)

type Usecase struct {
	repo loantype.Repository
	log  *zap.Logger
}

func NewUsecase(r loantype.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, log: log}
}

func (u *Usecase) Create(ctx context.Context, actor loanappl.Actor, in CreateLoanTypeInput) (*loantype.LoanType, error) {
	if !actor.CanApprove() {
		return nil, loanappl.ErrForbidden
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	lt := &loantype.LoanType{
		LoanTypeID:               strings.TrimSpace(in.LoanTypeID),
		LoanName:                 strings.TrimSpace(in.LoanName),
		Enabled:                  true,
		Currency:                 strings.ToUpper(in.Currency),
		InterestType:             in.InterestType,
		InterestRate:             in.InterestRate,
		LegalExpensesRate:        in.LegalExpensesRate,
		RepaymentDayOfTheMonth:   in.RepaymentDayOfTheMonth,
		RepaymentDayOfTheWeek:    in.RepaymentDayOfTheWeek,
		RepaymentDaysAfterCutoff: in.RepaymentDaysAfterCutoff,
		RepaymentFrequency:       in.RepaymentFrequency,
	}
	if lt.InterestType == "" {
		lt.InterestType = loanappl.InterestSimple
	}
	if err := u.repo.Create(ctx, lt); err != nil {
		return nil, err
	}
	return lt, nil
}

func validateCreate(in CreateLoanTypeInput) error {
	switch {
	case strings.TrimSpace(in.LoanTypeID) == "":
		return fmt.Errorf("loan_type_id is required: %w", ErrInvalidInput)
	case strings.TrimSpace(in.LoanName) == "":
		return fmt.Errorf("loan_name is required: %w", ErrInvalidInput)
	case in.InterestRate.IsNegative() || in.LegalExpensesRate.IsNegative():
		return fmt.Errorf("rates cannot be negative: %w", ErrInvalidInput)
	case in.RepaymentFrequency != "" && !in.RepaymentFrequency.Valid():
		return fmt.Errorf("repayment_frequency %q: %w", in.RepaymentFrequency, ErrInvalidInput)
	case in.InterestType != "" && in.InterestType != loanappl.InterestSimple && in.InterestType != loanappl.InterestCompound:
		return fmt.Errorf("interest_type %q: %w", in.InterestType, ErrInvalidInput)
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, loanTypeID string) (*loantype.LoanType, error) {
	return u.repo.GetByLoanTypeID(ctx, loanTypeID)
}

// SetEnabled toggles whether applications may select the loan type.
func (u *Usecase) SetEnabled(ctx context.Context, actor loanappl.Actor, loanTypeID string, enabled bool) (*loantype.LoanType, error) {
	if !actor.CanApprove() {
		return nil, loanappl.ErrForbidden
	}
	lt, err := u.repo.GetByLoanTypeID(ctx, loanTypeID)
	if err != nil {
		return nil, err
	}
	if lt.Enabled == enabled {
		return lt, nil
	}
	lt.Enabled = enabled
	if err := u.repo.Save(ctx, lt); err != nil {
		return nil, err
	}
	u.log.Info("loan type toggled", zap.String("loan_type_id", lt.LoanTypeID), zap.Bool("enabled", enabled))
	return lt, nil
}
