package http

import (
	"context"
	"errors"
	"net/http"

	mw "loanappl-backend/internal/adapter/middleware"
	"loanappl-backend/internal/domain/handoff"
	"loanappl-backend/internal/domain/loan"
	"loanappl-backend/internal/domain/loanappl"
	"loanappl-backend/internal/domain/loantype"
	"loanappl-backend/internal/domain/party"
	applUC "loanappl-backend/internal/usecase/loanappl"
	loantypeUC "loanappl-backend/internal/usecase/loantype"
	partyUC "loanappl-backend/internal/usecase/party"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusFor maps domain errors → HTTP codes.
func statusFor(err error) int {
	var dis *loanappl.DisabledReferenceError
	switch {
	case errors.Is(err, loanappl.ErrValidation), errors.As(err, &dis):
		return http.StatusUnprocessableEntity
	case errors.Is(err, partyUC.ErrInvalidInput), errors.Is(err, loantypeUC.ErrInvalidInput),
		errors.Is(err, loanappl.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, loanappl.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, loanappl.ErrNotFound), errors.Is(err, loanappl.ErrLoanNotFound),
		errors.Is(err, loan.ErrNotFound), errors.Is(err, party.ErrNotFound),
		errors.Is(err, loantype.ErrNotFound), errors.Is(err, handoff.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, loanappl.ErrInvalidTransition), errors.Is(err, loanappl.ErrReadOnlyField),
		errors.Is(err, loanappl.ErrNotSubmitted), errors.Is(err, loanappl.ErrCancelled),
		errors.Is(err, loanappl.ErrLoanExists), errors.Is(err, applUC.ErrConflict),
		errors.Is(err, applUC.ErrSuperseded), errors.Is(err, party.ErrAlreadyExists),
		errors.Is(err, loantype.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. view, when set, is the form state to send back
// alongside a rejected change.
func writeError(c echo.Context, log *zap.Logger, err error, view *applUC.FormView) error {
	code := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		resp.Error = "internal error"
	}
	var ve *loanappl.ValidationError
	if errors.As(err, &ve) {
		resp.Error = "validation failed"
		resp.Failures = ve.Failures
	}
	if view != nil {
		resp.Application = view
	}
	return c.JSON(code, resp)
}

// bindAndValidate writes the 400 / 422 response itself and reports false when it did.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// actorOf returns the caller resolved by the actor middleware.
func actorOf(c echo.Context) loanappl.Actor {
	a, _ := mw.ActorFrom(c)
	return a
}
