package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stockledger/backend/internal/domain/partner"
)

// SupplierHandler exposes the supplier directory
type SupplierHandler struct {
	BaseHandler
	suppliers partner.SupplierRepository
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(suppliers partner.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// RegisterRoutes registers supplier endpoints
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("", h.Create)
		suppliers.GET("", h.List)
		suppliers.GET("/:id", h.Get)
		suppliers.GET("/code/:code", h.GetByCode)
		suppliers.PUT("/:id", h.Update)
		suppliers.POST("/:id/activate", h.Activate)
		suppliers.POST("/:id/deactivate", h.Deactivate)
	}
}

// CreateSupplierRequest describes a new supplier
type CreateSupplierRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
}

// UpdateSupplierRequest carries mutable supplier fields
type UpdateSupplierRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
}

// Create registers a supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier, err := partner.NewSupplier(req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	supplier.WithContact(req.Contact)

	if err := h.suppliers.Create(c.Request.Context(), supplier); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Get returns a supplier by ID
func (h *SupplierHandler) Get(c *gin.Context) {
	supplierID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, err := h.suppliers.FindByID(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// GetByCode returns a supplier by its code
func (h *SupplierHandler) GetByCode(c *gin.Context) {
	supplier, err := h.suppliers.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List returns suppliers matching the filter, paginated
func (h *SupplierHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if active := c.Query("active"); active != "" {
		filter.Filters["active"] = active == "true"
	}

	suppliers, err := h.suppliers.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.suppliers.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

// Update changes mutable supplier fields; the code is immutable
func (h *SupplierHandler) Update(c *gin.Context) {
	supplierID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}
	var req UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier, err := h.suppliers.FindByID(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	supplier.Name = req.Name
	supplier.WithContact(req.Contact)

	if err := h.suppliers.Save(c.Request.Context(), supplier); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Activate allows orders to this supplier again
func (h *SupplierHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate stops new orders to this supplier
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *SupplierHandler) setActive(c *gin.Context, active bool) {
	supplierID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, err := h.suppliers.FindByID(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if active {
		supplier.Activate()
	} else {
		supplier.Deactivate()
	}

	if err := h.suppliers.Save(c.Request.Context(), supplier); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}
