package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/recordgate/recordgate/internal/access"
)

// RequireRole returns middleware that checks if the user has at least one of
// the specified roles. ADMIN and SUPER_ADMIN always pass; per-record policy
// downstream still decides what they may see.
func RequireRole(roles ...access.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := access.RoleSetFromStrings(RolesFromContext(c.Request().Context()))
			if userRoles.HasAny(access.RoleAdmin, access.RoleSuperAdmin) {
				return next(c)
			}
			if userRoles.HasAny(roles...) {
				return next(c)
			}
			names := make([]string, len(roles))
			for i, r := range roles {
				names[i] = string(r)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(names, " or ")))
		}
	}
}

// RequesterFromContext builds the typed requester identity and role set
// from the values the auth middleware stored on the request context.
func RequesterFromContext(c echo.Context) (string, access.RoleSet) {
	ctx := c.Request().Context()
	return UserIDFromContext(ctx), access.RoleSetFromStrings(RolesFromContext(ctx))
}
