package http

import (
	"errors"
	"net/http"
	"time"

	"loanappl-backend/internal/domain/loanappl"
	applUC "loanappl-backend/internal/usecase/loanappl"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	uc  *applUC.Usecase
	log *zap.Logger
}

func NewApplicationHandler(uc *applUC.Usecase, log *zap.Logger) *ApplicationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApplicationHandler{uc: uc, log: log}
}

type applicationReq struct {
	Application *loanappl.Application `json:"application" validate:"required"`
}

type draftChangeReq struct {
	Application *loanappl.Application `json:"application" validate:"required"`
	Field       string                `json:"field"       validate:"required,max=64"`
	Value       string                `json:"value"`
}

type editReq struct {
	Field     string     `json:"field"      validate:"required,max=64"`
	Value     string     `json:"value"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type handoffReq struct {
	PartyType     string                `json:"party_type"     validate:"required,party_type"`
	ApplicationID string                `json:"application_id" validate:"required_without=Application,omitempty,hex32"`
	Application   *loanappl.Application `json:"application"`
}

func (h *ApplicationHandler) PartyTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"party_types": h.uc.PartyTypes()})
}

func (h *ApplicationHandler) NewForm(c echo.Context) error {
	view, err := h.uc.NewForm(c.Request().Context(), actorOf(c))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ApplicationHandler) ChangeDraft(c echo.Context) error {
	var req draftChangeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	view, err := h.uc.Change(c.Request().Context(), actorOf(c), req.Application, req.Field, req.Value)
	if err != nil {
		return writeError(c, h.log, err, view)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ApplicationHandler) Create(c echo.Context) error {
	var req applicationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	view, err := h.uc.Create(c.Request().Context(), actorOf(c), req.Application)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	id, ok := applicationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
	}
	view, err := h.uc.Open(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ApplicationHandler) Edit(c echo.Context) error {
	id, ok := applicationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
	}
	var req editReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	in := applUC.EditInput{Field: req.Field, Value: req.Value}
	if req.UpdatedAt != nil {
		in.UpdatedAt = *req.UpdatedAt
	}
	view, err := h.uc.Edit(c.Request().Context(), actorOf(c), id, in)
	if err != nil {
		return writeError(c, h.log, err, view)
	}
	return c.JSON(http.StatusOK, view)
}

// Action runs one of the document actions named by the last path segment.
func (h *ApplicationHandler) Action(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := applicationID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
		}
		ctx, actor := c.Request().Context(), actorOf(c)

		var (
			view *applUC.FormView
			err  error
		)
		switch action {
		case "submit":
			view, err = h.uc.Submit(ctx, actor, id)
		case "cancel":
			view, err = h.uc.Cancel(ctx, actor, id)
		case "approve":
			view, err = h.uc.Approve(ctx, actor, id)
		case "deny":
			view, err = h.uc.Deny(ctx, actor, id)
		case "make-loan":
			nav, err := h.uc.MakeLoan(ctx, actor, id)
			if err != nil {
				return writeError(c, h.log, err, nil)
			}
			return c.JSON(http.StatusCreated, nav)
		default:
			return writeError(c, h.log, errors.New("unknown action "+action), nil)
		}
		if err != nil {
			return writeError(c, h.log, err, nil)
		}
		return c.JSON(http.StatusOK, view)
	}
}

func (h *ApplicationHandler) ViewLoan(c echo.Context) error {
	id, ok := applicationID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application_id path param"})
	}
	nav, err := h.uc.ViewLoan(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusOK, nav)
}

func (h *ApplicationHandler) StartPartyHandoff(c echo.Context) error {
	var req handoffReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	nav, err := h.uc.StartPartyHandoff(c.Request().Context(), actorOf(c), applUC.HandoffInput{
		PartyType:     loanappl.PartyType(req.PartyType),
		ApplicationID: req.ApplicationID,
		Draft:         req.Application,
	})
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(http.StatusCreated, nav)
}

func applicationID(c echo.Context) (string, bool) {
	id := c.Param("application_id")
	return id, reHex32.MatchString(id)
}
