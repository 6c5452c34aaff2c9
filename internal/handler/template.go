package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/cache"
	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/queue"
	"github.com/davilat/bus-inventory/internal/repository"
	"github.com/davilat/bus-inventory/internal/service"
)

// TemplateHandler exposes the layout template lifecycle: atomic
// create+generate, shape edits, the seat-editor batch endpoint and the
// push-down sync to cloned diagrams.
type TemplateHandler struct {
	Store     repository.Store
	Templates *service.TemplateService
	Sync      *service.SyncService
	Rec       *service.Reconciler
	Layouts   *cache.LayoutCache
}

func NewTemplateHandler(store repository.Store, layouts *cache.LayoutCache) *TemplateHandler {
	return &TemplateHandler{
		Store:     store,
		Templates: service.NewTemplateService(store),
		Sync:      service.NewSyncService(store),
		Rec:       service.NewReconciler(store),
		Layouts:   layouts,
	}
}

// Create handles POST /v1/templates.
func (h *TemplateHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in service.CreateTemplateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if in.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	tpl, err := h.Templates.Create(c.Request().Context(), ownerID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, tpl)
}

// List handles GET /v1/templates.
func (h *TemplateHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	templates, err := h.Store.TemplatesByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(templates), "items": templates})
}

// Get handles GET /v1/templates/:id and returns the template with its
// spaces and zones.
func (h *TemplateHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	detail, err := h.Templates.Detail(c.Request().Context(), ownerID, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Update handles PUT /v1/templates/:id. A shape change regenerates the
// seat layout inside the same transaction.
func (h *TemplateHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var in service.UpdateTemplateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	tpl, err := h.Templates.Update(c.Request().Context(), ownerID, id, in)
	if err != nil {
		return respondErr(c, err)
	}
	h.Layouts.Invalidate(c.Request().Context(), model.TemplateRef(tpl.ID))
	return c.JSON(http.StatusOK, tpl)
}

type spacesBatchReq struct {
	Spaces []layout.SpaceConfig `json:"spaces"`
}

// ReconcileSpaces handles PUT /v1/templates/:id/spaces, the seat-editor
// batch submit. An empty batch clears the layout.
func (h *TemplateHandler) ReconcileSpaces(c echo.Context) error {
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
	tpl, err := h.Store.TemplateByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return respondErr(c, err)
	}

	ref := model.TemplateRef(tpl.ID)
	result, err := h.Rec.Reconcile(ctx, ref, tpl.Bounds(), req.Spaces)
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

// PushSync handles POST /v1/templates/:id/sync, pushing the template's
// current layout to every unmodified diagram cloned from it.
func (h *TemplateHandler) PushSync(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Store.TemplateByIDAndOwner(ctx, id, ownerID); err != nil {
		return respondErr(c, err)
	}

	results, err := h.Sync.PushTemplate(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}

	ev := queue.LayoutEvent{
		Type:       queue.EventTemplateSynced,
		OwnerID:    ownerID,
		TemplateID: id,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	refs := make([]model.LayoutRef, 0, len(results))
	for _, r := range results {
		if r.Error != "" {
			ev.Failed++
			continue
		}
		ev.DiagramIDs = append(ev.DiagramIDs, r.DiagramID)
		ev.Created += r.Created
		ev.Updated += r.Updated
		ev.Deleted += r.Deleted
		refs = append(refs, model.DiagramRef(r.DiagramID))
	}
	h.Layouts.Invalidate(ctx, refs...)
	_ = queue.PublishLayoutEvent(ctx, ev)

	return c.JSON(http.StatusOK, echo.Map{"count": len(results), "results": results})
}
