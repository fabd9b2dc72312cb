package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// IsPublicPath reports whether a route is served without a bearer token.
// Only the health probes are public.
func IsPublicPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// AuthSkipper exempts public routes from JWTMiddleware. It matches on the
// registered route so query strings and unknown paths never skip auth.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}
