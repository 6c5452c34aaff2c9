package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/cache"
	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/queue"
	"github.com/davilat/bus-inventory/internal/repository"
	"github.com/davilat/bus-inventory/internal/service"
)

// DiagramHandler exposes the operational diagram lifecycle: cloning from
// a template, the cached layout read, the seat-editor batch endpoint and
// the reset-to-template operation.
type DiagramHandler struct {
	Store    repository.Store
	Diagrams *service.DiagramService
	Rec      *service.Reconciler
	Layouts  *cache.LayoutCache
}

func NewDiagramHandler(store repository.Store, layouts *cache.LayoutCache) *DiagramHandler {
	return &DiagramHandler{
		Store:    store,
		Diagrams: service.NewDiagramService(store),
		Rec:      service.NewReconciler(store),
		Layouts:  layouts,
	}
}

type createDiagramReq struct {
	TemplateID uint64  `json:"template_id"`
	BusID      *uint64 `json:"bus_id"`
	Name       string  `json:"name"`
}

// Create handles POST /v1/diagrams: clone a template into a new diagram,
// optionally attaching it to a bus.
func (h *DiagramHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createDiagramReq
	if err := c.Bind(&req); err != nil || req.TemplateID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "template_id required"})
	}
	d, err := h.Diagrams.CreateFromTemplate(c.Request().Context(), ownerID, req.TemplateID, req.BusID, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// Get handles GET /v1/diagrams/:id. Layout reads dominate the seat
// editor, so the rendered body is served from the Redis cache when
// fresh.
func (h *DiagramHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	ref := model.DiagramRef(id)

	if body, ok := h.Layouts.Get(ctx, ref); ok {
		// Ownership still has to hold for a cache hit.
		if _, err := h.Store.DiagramByIDAndOwner(ctx, id, ownerID); err != nil {
			return respondErr(c, err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}

	detail, err := h.Diagrams.Detail(ctx, ownerID, id)
	if err != nil {
		return respondErr(c, err)
	}
	if body, err := json.Marshal(detail); err == nil {
		h.Layouts.Set(ctx, ref, body)
	}
	return c.JSON(http.StatusOK, detail)
}

// ReconcileSpaces handles PUT /v1/diagrams/:id/spaces. A successful
// batch marks the diagram as locally modified, excluding it from
// template sync until reset.
func (h *DiagramHandler) ReconcileSpaces(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req spacesBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	d, err := h.Store.DiagramByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return respondErr(c, err)
	}

	ref := model.DiagramRef(d.ID)
	result, err := h.Rec.Reconcile(ctx, ref, d.Bounds(), req.Spaces)
	if err != nil {
		return respondErr(c, err)
	}
	h.Layouts.Invalidate(ctx, ref)
	_ = queue.PublishLayoutEvent(ctx, queue.LayoutEvent{
		Type:        queue.EventLayoutReconciled,
		OwnerID:     ownerID,
		LayoutKind:  string(ref.Kind),
		LayoutID:    ref.ID,
		Created:     result.Created,
		Updated:     result.Updated,
		Deactivated: result.Deactivated,
		TotalSeats:  result.TotalActiveSeats,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, result)
}

// Reset handles POST /v1/diagrams/:id/reset: discard local
// customizations, re-clone the template and clear the modified flag.
func (h *DiagramHandler) Reset(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	d, err := h.Diagrams.ResetToTemplate(ctx, ownerID, id)
	if err != nil {
		return respondErr(c, err)
	}
	h.Layouts.Invalidate(ctx, model.DiagramRef(d.ID))
	return c.JSON(http.StatusOK, d)
}
