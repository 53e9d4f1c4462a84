package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/partner"
)

// WarehouseHandler exposes the warehouse directory
type WarehouseHandler struct {
	BaseHandler
	warehouses partner.WarehouseRepository
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouses partner.WarehouseRepository) *WarehouseHandler {
	return &WarehouseHandler{warehouses: warehouses}
}

// RegisterRoutes registers warehouse endpoints
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.Create)
		warehouses.GET("", h.List)
		warehouses.GET("/:id", h.Get)
		warehouses.GET("/code/:code", h.GetByCode)
		warehouses.PUT("/:id", h.Update)
		warehouses.POST("/:id/activate", h.Activate)
		warehouses.POST("/:id/deactivate", h.Deactivate)
	}
}

// CreateWarehouseRequest describes a new warehouse
type CreateWarehouseRequest struct {
	Code     string          `json:"code" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Location string          `json:"location"`
	Capacity decimal.Decimal `json:"capacity"`
}

// UpdateWarehouseRequest carries mutable warehouse fields
type UpdateWarehouseRequest struct {
	Name     string          `json:"name" binding:"required"`
	Location string          `json:"location"`
	Capacity decimal.Decimal `json:"capacity"`
}

// Create registers a warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouse, err := partner.NewWarehouse(req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	warehouse.WithLocation(req.Location)
	if err := warehouse.SetCapacity(req.Capacity); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.warehouses.Create(c.Request.Context(), warehouse); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, warehouse)
}

// Get returns a warehouse by ID
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	warehouse, err := h.warehouses.FindByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// GetByCode returns a warehouse by its code
func (h *WarehouseHandler) GetByCode(c *gin.Context) {
	warehouse, err := h.warehouses.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// List returns warehouses matching the filter, paginated
func (h *WarehouseHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if active := c.Query("active"); active != "" {
		filter.Filters["active"] = active == "true"
	}

	warehouses, err := h.warehouses.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.warehouses.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, warehouses, total, filter.Page, filter.PageSize)
}

// Update changes mutable warehouse fields; the code is immutable
func (h *WarehouseHandler) Update(c *gin.Context) {
	warehouseID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	var req UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouse, err := h.warehouses.FindByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	warehouse.Name = req.Name
	warehouse.WithLocation(req.Location)
	if err := warehouse.SetCapacity(req.Capacity); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.warehouses.Save(c.Request.Context(), warehouse); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// Activate returns the warehouse to service
func (h *WarehouseHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate takes the warehouse out of service
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *WarehouseHandler) setActive(c *gin.Context, active bool) {
	warehouseID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	warehouse, err := h.warehouses.FindByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if active {
		warehouse.Activate()
	} else {
		warehouse.Deactivate()
	}

	if err := h.warehouses.Save(c.Request.Context(), warehouse); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}
