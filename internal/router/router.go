// Package router wires the HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/handler"
)

// RegisterRoutes registers the unauthenticated routes: the health check
// and the auth endpoints under /v1/auth.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
