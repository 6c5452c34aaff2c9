package router

import (
	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/handler"
	"github.com/davilat/bus-inventory/internal/middleware"
	"github.com/davilat/bus-inventory/internal/model"
)

// RegisterOperator registers the inventory endpoints under /v1. Every
// route requires a valid access token with the OPERATOR or ADMIN role;
// ownership of each entity is enforced again in the handlers.
func RegisterOperator(
	e *echo.Echo,
	jwtSecret string,
	a *handler.AuthHandler,
	t *handler.TemplateHandler,
	d *handler.DiagramHandler,
	z *handler.ZoneHandler,
	b *handler.BusHandler,
	rateLimit echo.MiddlewareFunc,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OPERATOR", "ADMIN"),
		rateLimit,
	)

	g.GET("/me", a.Me)

	// ---- Templates ----
	g.POST("/templates", t.Create)
	g.GET("/templates", t.List)
	g.GET("/templates/:id", t.Get)
	g.PUT("/templates/:id", t.Update)
	g.PUT("/templates/:id/spaces", t.ReconcileSpaces) // seat-editor batch submit
	g.POST("/templates/:id/sync", t.PushSync)

	// ---- Diagrams ----
	g.POST("/diagrams", d.Create)
	g.GET("/diagrams/:id", d.Get)
	g.PUT("/diagrams/:id/spaces", d.ReconcileSpaces)
	g.POST("/diagrams/:id/reset", d.Reset)

	// ---- Zones (same handler, both layout kinds) ----
	g.GET("/templates/:id/zones", z.List(model.KindTemplate))
	g.POST("/templates/:id/zones", z.Create(model.KindTemplate))
	g.PUT("/templates/:id/zones/:zone_id", z.Update(model.KindTemplate))
	g.DELETE("/templates/:id/zones/:zone_id", z.Delete(model.KindTemplate))
	g.GET("/diagrams/:id/zones", z.List(model.KindDiagram))
	g.POST("/diagrams/:id/zones", z.Create(model.KindDiagram))
	g.PUT("/diagrams/:id/zones/:zone_id", z.Update(model.KindDiagram))
	g.DELETE("/diagrams/:id/zones/:zone_id", z.Delete(model.KindDiagram))

	// ---- Buses ----
	g.POST("/buses", b.Create)
	g.GET("/buses", b.List)
	g.GET("/buses/:id", b.Get)
}
