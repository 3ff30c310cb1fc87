package http

import (
	"net/http"

	"loanappl-backend/internal/domain/loanappl"
	loantypeUC "loanappl-backend/internal/usecase/loantype"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoanTypeHandler struct {
	uc  *loantypeUC.Usecase
	log *zap.Logger
}

func NewLoanTypeHandler(uc *loantypeUC.Usecase, log *zap.Logger) *LoanTypeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoanTypeHandler{uc: uc, log: log}
}

type createLoanTypeReq struct {
	LoanTypeID               string          `json:"loan_type_id"                validate:"required,max=64"`
	LoanName                 string          `json:"loan_name"                   validate:"required,max=140"`
	Currency                 string          `json:"currency"                    validate:"omitempty,len=3"`
	InterestType             string          `json:"interest_type"               validate:"omitempty,oneof=Simple Compound"`
	InterestRate             decimal.Decimal `json:"interest_rate"               validate:"decnonneg"`
	LegalExpensesRate        decimal.Decimal `json:"legal_expenses_rate"         validate:"decnonneg"`
	RepaymentDayOfTheMonth   int             `json:"repayment_day_of_the_month"  validate:"gte=0,lte=31"`
	RepaymentDayOfTheWeek    string          `json:"repayment_day_of_the_week"   validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	RepaymentDaysAfterCutoff int             `json:"repayment_days_after_cutoff" validate:"gte=0"`
	RepaymentFrequency       string          `json:"repayment_frequency"         validate:"omitempty,frequency"`
}

type setEnabledReq struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *LoanTypeHandler) Create(c echo.Context) error {
	var req createLoanTypeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	lt, err := h.uc.Create(c.Request().Context(), actorOf(c), loantypeUC.CreateLoanTypeInput{
		LoanTypeID:               req.LoanTypeID,
		LoanName:                 req.LoanName,
		Currency:                 req.Currency,
		InterestType:             loanappl.InterestType(req.InterestType),
		InterestRate:             req.InterestRate,
		LegalExpensesRate:        req.LegalExpensesRate,
		RepaymentDayOfTheMonth:   req.RepaymentDayOfTheMonth,
		RepaymentDayOfTheWeek:    req.RepaymentDayOfTheWeek,
		RepaymentDaysAfterCutoff: req.RepaymentDaysAfterCutoff,
		RepaymentFrequency:       loanappl.Frequency(req.RepaymentFrequency),
	})
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusCreated, lt)
}

func (h *LoanTypeHandler) Get(c echo.Context) error {
	lt, err := h.uc.Get(c.Request().Context(), c.Param("loan_type_id"))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusOK, lt)
}

func (h *LoanTypeHandler) SetEnabled(c echo.Context) error {
	var req setEnabledReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	lt, err := h.uc.SetEnabled(c.Request().Context(), actorOf(c), c.Param("loan_type_id"), *req.Enabled)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusOK, lt)
}
