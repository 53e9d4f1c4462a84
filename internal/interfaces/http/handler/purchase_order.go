package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptrade "github.com/stockledger/backend/internal/application/trade"
	"github.com/stockledger/backend/internal/domain/trade"
)

// PurchaseOrderHandler exposes the supplier order lifecycle
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *apptrade.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *apptrade.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// RegisterRoutes registers purchase order endpoints
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/number/:number", h.GetByNumber)
		orders.POST("/:id/approve", h.Approve)
		orders.POST("/:id/mark-ordered", h.MarkOrdered)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/receipts", h.ReceiveItems)
	}
}

// OrderItemInput is one requested line on a new purchase order
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreateOrderRequest describes a new purchase order
type CreateOrderRequest struct {
	SupplierID   uuid.UUID        `json:"supplier_id" binding:"required"`
	WarehouseID  uuid.UUID        `json:"warehouse_id" binding:"required"`
	ExpectedDate string           `json:"expected_date"`
	Notes        string           `json:"notes"`
	Items        []OrderItemInput `json:"items" binding:"required"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ReceiptInput reports the cumulative received total for one order item
type ReceiptInput struct {
	ItemID           uuid.UUID       `json:"item_id" binding:"required"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// ReceiveItemsRequest carries one receipt batch
type ReceiveItemsRequest struct {
	Receipts []ReceiptInput `json:"receipts" binding:"required"`
}

// Create creates a purchase order in pending state
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := apptrade.CreateOrderRequest{
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
		Notes:       req.Notes,
	}
	if req.ExpectedDate != "" {
		expected, err := parseDateTime(req.ExpectedDate)
		if err != nil {
			h.BadRequest(c, "Invalid expected_date format")
			return
		}
		appReq.ExpectedDate = &expected
	}
	for _, item := range req.Items {
		appReq.Items = append(appReq.Items, apptrade.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}

	order, err := h.orderService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get returns an order with its items
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByNumber returns an order by its business key
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orderService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List returns orders matching the filter, paginated
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	for param, key := range map[string]string{"supplier_id": "supplier_id", "warehouse_id": "warehouse_id"} {
		if err := uuidQuery(c, &filter, param, key); err != nil {
			h.BadRequest(c, "Invalid "+param+" format")
			return
		}
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	for param, key := range map[string]string{"date_from": "date_from", "date_to": "date_to"} {
		if value := c.Query(param); value != "" {
			t, err := parseDateTime(value)
			if err != nil {
				h.BadRequest(c, "Invalid "+param+" format")
				return
			}
			filter.Filters[key] = t
		}
	}

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Approve moves a pending order to approved
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.transition(c, h.orderService.Approve)
}

// MarkOrdered marks an approved order as placed with the supplier
func (h *PurchaseOrderHandler) MarkOrdered(c *gin.Context) {
	h.transition(c, h.orderService.MarkOrdered)
}

// Cancel terminates an order from any non-terminal state
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ReceiveItems records cumulative receipts against an ordered purchase order
func (h *PurchaseOrderHandler) ReceiveItems(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req ReceiveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipts := make([]apptrade.ReceiptInput, 0, len(req.Receipts))
	for _, receipt := range req.Receipts {
		receipts = append(receipts, apptrade.ReceiptInput{
			ItemID:           receipt.ItemID,
			ReceivedQuantity: receipt.ReceivedQuantity,
		})
	}

	order, err := h.orderService.ReceiveItems(c.Request.Context(), orderID, receipts, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *PurchaseOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error)) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := fn(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
