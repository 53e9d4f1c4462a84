package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// LedgerHandler exposes the transaction ledger: movement commands and the
// audit trail queries
type LedgerHandler struct {
	BaseHandler
	ledgerService *appinv.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *appinv.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers ledger endpoints
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.Record)
		ledger.POST("/adjustments", h.Adjust)
		ledger.POST("/sales", h.RecordSale)
		ledger.POST("/returns", h.RecordReturn)
		ledger.POST("/waste", h.RecordWaste)
		ledger.GET("/entries", h.ListEntries)
		ledger.GET("/entries/:id", h.GetEntry)
		ledger.GET("/references/:reference", h.ListByReference)
	}
}

// RecordEntryRequest appends one signed movement to the ledger
type RecordEntryRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID     uuid.UUID       `json:"warehouse_id" binding:"required"`
	Type            string          `json:"type" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
	OccurredAt      string          `json:"occurred_at"`
}

// AdjustRequest corrects a pair's quantity from an observed count
type AdjustRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason" binding:"required"`
}

// SaleRequest removes sold goods from stock
type SaleRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Reference   string          `json:"reference"`
}

// ReturnRequest books a customer or supplier return
type ReturnRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Direction   string          `json:"direction" binding:"required"`
	Reference   string          `json:"reference"`
}

// WasteRequest removes spoiled or damaged goods from stock
type WasteRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Reason      string          `json:"reason" binding:"required"`
}

// Record appends a generic ledger entry
func (h *LedgerHandler) Record(c *gin.Context) {
	var req RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := appinv.RecordEntryRequest{
		ProductID:       req.ProductID,
		WarehouseID:     req.WarehouseID,
		Type:            inventory.TransactionType(req.Type),
		Quantity:        req.Quantity,
		UnitCost:        req.UnitCost,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		ActorID:         getActorID(c),
	}
	if req.OccurredAt != "" {
		occurredAt, err := parseDateTime(req.OccurredAt)
		if err != nil {
			h.BadRequest(c, "Invalid occurred_at format")
			return
		}
		appReq.OccurredAt = &occurredAt
	}

	result, err := h.ledgerService.Record(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Adjust books a stock count correction
func (h *LedgerHandler) Adjust(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Adjust(c.Request.Context(), appinv.AdjustRequest{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		OldQuantity: req.OldQuantity,
		NewQuantity: req.NewQuantity,
		Reason:      req.Reason,
		ActorID:     getActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordSale books a sale
func (h *LedgerHandler) RecordSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.RecordSale(c.Request.Context(),
		req.ProductID, req.WarehouseID, req.Quantity, req.Reference, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordReturn books a return in either direction
func (h *LedgerHandler) RecordReturn(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.RecordReturn(c.Request.Context(),
		req.ProductID, req.WarehouseID, req.Quantity,
		appinv.ReturnDirection(req.Direction), req.Reference, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordWaste books spoilage
func (h *LedgerHandler) RecordWaste(c *gin.Context) {
	var req WasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.RecordWaste(c.Request.Context(),
		req.ProductID, req.WarehouseID, req.Quantity, req.Reason, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetEntry returns a single ledger entry
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListEntries returns ledger entries matching the filter, paginated
func (h *LedgerHandler) ListEntries(c *gin.Context) {
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
	if txType := c.Query("type"); txType != "" {
		filter.Filters["type"] = txType
	}
	if reference := c.Query("reference"); reference != "" {
		filter.Filters["reference"] = reference
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

	result, err := h.ledgerService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByReference returns all entries sharing a reference number
func (h *LedgerHandler) ListByReference(c *gin.Context) {
	entries, err := h.ledgerService.ListByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
