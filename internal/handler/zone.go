package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/cache"
	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// ZoneHandler exposes zone CRUD on both layout kinds. The handlers are
// parameterized by kind so templates and diagrams share one
// implementation; a diagram zone edit marks the diagram as locally
// modified, since the next template sync would otherwise overwrite it.
type ZoneHandler struct {
	Store   repository.Store
	Layouts *cache.LayoutCache
}

func NewZoneHandler(store repository.Store, layouts *cache.LayoutCache) *ZoneHandler {
	return &ZoneHandler{Store: store, Layouts: layouts}
}

type zoneReq struct {
	Name            string  `json:"name"`
	RowNumbers      []int   `json:"row_numbers"`
	PriceMultiplier float64 `json:"price_multiplier"`
}

// resolveRef verifies the layout exists and belongs to the caller.
func (h *ZoneHandler) resolveRef(c echo.Context, kind model.LayoutKind) (model.LayoutRef, error) {
	ownerID, err := getUserID(c)
	if err != nil {
		return model.LayoutRef{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return model.LayoutRef{}, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if kind == model.KindTemplate {
		if _, err := h.Store.TemplateByIDAndOwner(ctx, id, ownerID); err != nil {
			return model.LayoutRef{}, err
		}
		return model.TemplateRef(id), nil
	}
	if _, err := h.Store.DiagramByIDAndOwner(ctx, id, ownerID); err != nil {
		return model.LayoutRef{}, err
	}
	return model.DiagramRef(id), nil
}

// List returns the zones of a layout.
func (h *ZoneHandler) List(kind model.LayoutKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := h.resolveRef(c, kind)
		if err != nil {
			return h.zoneErr(c, err)
		}
		zones, err := h.Store.ZonesByLayout(c.Request().Context(), ref)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"count": len(zones), "items": zones})
	}
}

// Create adds a zone to a layout.
func (h *ZoneHandler) Create(kind model.LayoutKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := h.resolveRef(c, kind)
		if err != nil {
			return h.zoneErr(c, err)
		}
		var req zoneReq
		if err := c.Bind(&req); err != nil || req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
		}
		if req.PriceMultiplier <= 0 {
			req.PriceMultiplier = 1.0
		}
		z := &model.Zone{
			LayoutKind:      ref.Kind,
			LayoutID:        ref.ID,
			Name:            req.Name,
			RowNumbers:      req.RowNumbers,
			PriceMultiplier: req.PriceMultiplier,
		}
		ctx := c.Request().Context()
		if err := h.Store.CreateZone(ctx, z); err != nil {
			return respondErr(c, err)
		}
		h.afterZoneWrite(c, ref)
		return c.JSON(http.StatusCreated, z)
	}
}

// Update edits a zone of a layout.
func (h *ZoneHandler) Update(kind model.LayoutKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := h.resolveRef(c, kind)
		if err != nil {
			return h.zoneErr(c, err)
		}
		zoneID, ok := pathID(c, "zone_id")
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone_id"})
		}
		var req zoneReq
		if err := c.Bind(&req); err != nil || req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
		}
		if req.PriceMultiplier <= 0 {
			req.PriceMultiplier = 1.0
		}
		z := &model.Zone{
			ID:              zoneID,
			LayoutKind:      ref.Kind,
			LayoutID:        ref.ID,
			Name:            req.Name,
			RowNumbers:      req.RowNumbers,
			PriceMultiplier: req.PriceMultiplier,
		}
		ctx := c.Request().Context()
		if err := h.Store.UpdateZone(ctx, z); err != nil {
			return respondErr(c, err)
		}
		h.afterZoneWrite(c, ref)
		return c.JSON(http.StatusOK, z)
	}
}

// Delete removes a zone from a layout.
func (h *ZoneHandler) Delete(kind model.LayoutKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := h.resolveRef(c, kind)
		if err != nil {
			return h.zoneErr(c, err)
		}
		zoneID, ok := pathID(c, "zone_id")
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone_id"})
		}
		ctx := c.Request().Context()
		if err := h.Store.DeleteZone(ctx, zoneID, ref); err != nil {
			return respondErr(c, err)
		}
		h.afterZoneWrite(c, ref)
		return c.NoContent(http.StatusNoContent)
	}
}

// afterZoneWrite invalidates the cached layout and, for diagrams, marks
// the diagram as modified so the local zones survive template syncs.
func (h *ZoneHandler) afterZoneWrite(c echo.Context, ref model.LayoutRef) {
	ctx := c.Request().Context()
	h.Layouts.Invalidate(ctx, ref)
	if ref.Kind == model.KindDiagram {
		if err := h.Store.SetDiagramModified(ctx, ref.ID, true); err != nil {
			c.Logger().Error(err)
		}
	}
}

// zoneErr lets resolveRef's HTTP errors pass through while repository
// errors get the shared mapping.
func (h *ZoneHandler) zoneErr(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return respondErr(c, err)
}
