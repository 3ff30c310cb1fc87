package http

import (
	"time"

	mw "loanappl-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Routes struct {
	Health       *Handler
	Applications *ApplicationHandler
	Parties      *PartyHandler
	LoanTypes    *LoanTypeHandler

	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Logger         *zap.Logger
}

// NewServer builds the echo instance with every route registered.
func NewServer(r Routes) *echo.Echo {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.Use(mw.RequestLogger(r.Logger), echomw.Recover())

	e.GET("/health", r.Health.Health)
	e.GET("/metrics", r.Health.Metrics)

	m := []echo.MiddlewareFunc{mw.ActorMiddleware(), mw.IdempotencyMiddleware(r.Redis, r.IdempotencyTTL, r.Logger)}

	apps := e.Group("/loan-applications", m...)
	apps.GET("/party-types", r.Applications.PartyTypes)
	apps.POST("/form", r.Applications.NewForm)
	apps.POST("/form/changes", r.Applications.ChangeDraft)
	apps.POST("", r.Applications.Create)
	apps.GET("/:application_id", r.Applications.Get)
	apps.PATCH("/:application_id", r.Applications.Edit)
	for _, action := range []string{"submit", "cancel", "approve", "deny", "make-loan"} {
		apps.POST("/:application_id/"+action, r.Applications.Action(action))
	}
	apps.GET("/:application_id/loan", r.Applications.ViewLoan)

	e.POST("/party-handoffs", r.Applications.StartPartyHandoff, m...)

	parties := e.Group("/parties", m...)
	parties.POST("", r.Parties.Create)
	parties.GET("/:party_type/:party_id", r.Parties.Get)

	types := e.Group("/loan-types", m...)
	types.POST("", r.LoanTypes.Create)
	types.GET("/:loan_type_id", r.LoanTypes.Get)
	types.PUT("/:loan_type_id/enabled", r.LoanTypes.SetEnabled)

	return e
}
