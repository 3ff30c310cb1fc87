package middleware

import (
	"net/http"
	"strings"

	"loanappl-backend/internal/domain/loanappl"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID    = "Ax-Actor-Id"
	HeaderActorName  = "Ax-Actor-Name"
	HeaderActorRoles = "Ax-Actor-Roles"

	actorKey = "ax.actor"
)

// ActorMiddleware resolves the caller from the Ax-Actor-* headers set by the
// gateway. Roles is a comma separated list.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			id := strings.TrimSpace(h.Get(HeaderActorID))
			if id == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			if len(id) > 140 {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			}
			c.Set(actorKey, loanappl.Actor{
				ID:       id,
				FullName: strings.TrimSpace(h.Get(HeaderActorName)),
				Roles:    parseRoles(h.Get(HeaderActorRoles)),
			})
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by ActorMiddleware.
func ActorFrom(c echo.Context) (loanappl.Actor, bool) {
	a, ok := c.Get(actorKey).(loanappl.Actor)
	return a, ok
}

func parseRoles(raw string) []string {
	var out []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
