package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/catalog"
)

// ProductHandler exposes the product catalog
type ProductHandler struct {
	BaseHandler
	products catalog.ProductRepository
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products catalog.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes registers product endpoints
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.GET("/sku/:sku", h.GetBySKU)
		products.PUT("/:id", h.Update)
		products.POST("/:id/activate", h.Activate)
		products.POST("/:id/deactivate", h.Deactivate)
	}
}

// CreateProductRequest describes a new catalog product
type CreateProductRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateProductRequest carries mutable product fields
type UpdateProductRequest struct {
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Create registers a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := catalog.NewProduct(req.SKU, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if err := product.SetPricing(req.UnitCost, req.UnitPrice); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get returns a product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetBySKU returns a product by its SKU
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	product, err := h.products.FindBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns products matching the filter, paginated
func (h *ProductHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if active := c.Query("active"); active != "" {
		filter.Filters["active"] = active == "true"
	}

	products, err := h.products.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.products.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update changes mutable product fields; the SKU is immutable
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	product.Name = req.Name
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if err := product.SetPricing(req.UnitCost, req.UnitPrice); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.products.Save(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate returns the product to active use
func (h *ProductHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate removes the product from active use, keeping its history
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *ProductHandler) setActive(c *gin.Context, active bool) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}

	if err := h.products.Save(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
