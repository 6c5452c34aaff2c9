package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// BusHandler exposes the fleet entities a diagram attaches to.
type BusHandler struct {
	Store repository.Store
}

func NewBusHandler(store repository.Store) *BusHandler {
	return &BusHandler{Store: store}
}

type createBusReq struct {
	Plate     string `json:"plate"`
	ModelName string `json:"model_name"`
}

// Create handles POST /v1/buses.
func (h *BusHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	if req.Plate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate required"})
	}
	b := &model.Bus{OwnerID: ownerID, Plate: req.Plate, ModelName: req.ModelName, IsActive: true}
	if err := h.Store.CreateBus(c.Request().Context(), b); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /v1/buses.
func (h *BusHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	buses, err := h.Store.BusesByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(buses), "items": buses})
}

// Get handles GET /v1/buses/:id.
func (h *BusHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Store.BusByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
