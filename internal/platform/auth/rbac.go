package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Permission is an action on the rounding workspace.
type Permission string

const (
	PermViewSheets     Permission = "sheets:view"
	PermEditSheets     Permission = "sheets:edit"
	PermResetWorkspace Permission = "workspace:reset"
)

var rolePermissions = map[string][]Permission{
	RoleAdmin:     {PermViewSheets, PermEditSheets, PermResetWorkspace},
	RolePhysician: {PermViewSheets, PermEditSheets, PermResetWorkspace},
	RoleNurse:     {PermViewSheets, PermEditSheets},
}

// KnownRole reports whether role is one the API grants permissions to.
func KnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// Can reports whether any of roles grants perm. Unknown roles grant nothing.
func Can(roles []string, perm Permission) bool {
	for _, r := range roles {
		for _, p := range rolePermissions[r] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// Require rejects requests whose user lacks perm with 403.
func Require(perm Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !Can(RolesFromContext(c.Request().Context()), perm) {
				return echo.NewHTTPError(http.StatusForbidden, "missing permission: "+string(perm))
			}
			return next(c)
		}
	}
}
