package http

import (
	"net/http"

	"loanappl-backend/internal/domain/loanappl"
	partyUC "loanappl-backend/internal/usecase/party"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PartyHandler struct {
	uc  *partyUC.Usecase
	log *zap.Logger
}

func NewPartyHandler(uc *partyUC.Usecase, log *zap.Logger) *PartyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PartyHandler{uc: uc, log: log}
}

type createPartyReq struct {
	PartyType       string `json:"party_type"       validate:"required,party_type"`
	PartyID         string `json:"party_id"         validate:"omitempty,max=64"`
	PartyName       string `json:"party_name"       validate:"required,max=140"`
	DefaultCurrency string `json:"default_currency" validate:"omitempty,len=3"`
	HandoffToken    string `json:"handoff_token"    validate:"omitempty,uuid"`
}

func (h *PartyHandler) Create(c echo.Context) error {
	var req createPartyReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Create(c.Request().Context(), actorOf(c), partyUC.CreatePartyInput{
		PartyType:       loanappl.PartyType(req.PartyType),
		PartyID:         req.PartyID,
		PartyName:       req.PartyName,
		DefaultCurrency: req.DefaultCurrency,
		HandoffToken:    req.HandoffToken,
	})
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *PartyHandler) Get(c echo.Context) error {
	pt := loanappl.PartyType(c.Param("party_type"))
	if !pt.Valid() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid party_type path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), pt, c.Param("party_id"))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusOK, dto)
}
