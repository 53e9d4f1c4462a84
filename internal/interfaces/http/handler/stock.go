package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/stockledger/backend/internal/application/inventory"
)

// StockHandler exposes the stock view: quantities, thresholds, alerts and
// reconciliation
type StockHandler struct {
	BaseHandler
	stockService *appinv.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *appinv.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterRoutes registers stock endpoints
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("", h.List)
		stock.GET("/lookup", h.Lookup)
		stock.GET("/warehouses/:id", h.ListByWarehouse)
		stock.GET("/low", h.ListLowStock)
		stock.GET("/reorder", h.ListReorderRequired)
		stock.PUT("/thresholds", h.SetThresholds)
		stock.POST("/reconcile", h.Reconcile)
		stock.POST("/reconcile/all", h.ReconcileAll)
	}
}

// SetThresholdsRequest carries replenishment thresholds for one pair
type SetThresholdsRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID  uuid.UUID       `json:"warehouse_id" binding:"required"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
}

// ReconcileRequest names the pair to rebuild from the ledger
type ReconcileRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
}

// List returns stock levels matching the filter, paginated
func (h *StockHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	for param, key := range map[string]string{"product_id": "product_id", "warehouse_id": "warehouse_id"} {
		if err := uuidQuery(c, &filter, param, key); err != nil {
			h.BadRequest(c, "Invalid "+param+" format")
			return
		}
	}
	if hasStock := c.Query("has_stock"); hasStock != "" {
		filter.Filters["has_stock"] = hasStock == "true"
	}

	result, err := h.stockService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Lookup returns the stock level for one product/warehouse pair
func (h *StockHandler) Lookup(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product_id format")
		return
	}
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id format")
		return
	}

	level, err := h.stockService.Get(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// ListByWarehouse returns all stock levels in one warehouse
func (h *StockHandler) ListByWarehouse(c *gin.Context) {
	warehouseID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, err := h.stockService.ListByWarehouse(c.Request.Context(), warehouseID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// ListLowStock returns levels at or below their minimum stock
func (h *StockHandler) ListLowStock(c *gin.Context) {
	warehouseID, err := optionalWarehouseQuery(c)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id format")
		return
	}

	levels, err := h.stockService.ListLowStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// ListReorderRequired returns levels at or below their reorder point with
// suggested order quantities
func (h *StockHandler) ListReorderRequired(c *gin.Context) {
	warehouseID, err := optionalWarehouseQuery(c)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id format")
		return
	}

	suggestions, err := h.stockService.ListReorderRequired(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suggestions)
}

// SetThresholds updates a pair's replenishment thresholds
func (h *StockHandler) SetThresholds(c *gin.Context) {
	var req SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.stockService.SetThresholds(c.Request.Context(),
		req.ProductID, req.WarehouseID, req.MinStock, req.MaxStock, req.ReorderPoint)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Reconcile rebuilds one pair's quantity from the ledger sum
func (h *StockHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.Reconcile(c.Request.Context(), req.ProductID, req.WarehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReconcileAll sweeps every pair, optionally restricted to one warehouse,
// and returns the results that showed drift
func (h *StockHandler) ReconcileAll(c *gin.Context) {
	warehouseID, err := optionalWarehouseQuery(c)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id format")
		return
	}

	drifted, err := h.stockService.ReconcileAll(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"drifted_count": len(drifted),
		"drifted":       drifted,
	})
}
