package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// TransferHandler exposes warehouse-to-warehouse stock moves
type TransferHandler struct {
	BaseHandler
	transferService *appinv.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *appinv.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers transfer endpoints
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.Transfer)
		transfers.GET("/:reference", h.GetByReference)
	}
}

// TransferRequest moves a quantity between two warehouses. The idempotency
// key comes from the X-Idempotency-Key header so redriven commands are
// recognized as duplicates.
type TransferRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	SourceWarehouse uuid.UUID       `json:"source_warehouse" binding:"required"`
	DestWarehouse   uuid.UUID       `json:"dest_warehouse" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	Notes           string          `json:"notes"`
}

// Transfer executes a stock transfer. A compensated transfer still answers
// 200; the body carries the warning and the compensating ledger state.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), appinv.TransferRequest{
		ProductID:       req.ProductID,
		SourceWarehouse: req.SourceWarehouse,
		DestWarehouse:   req.DestWarehouse,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
		ActorID:         getActorID(c),
		IdempotencyKey:  c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Compensated {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
		return
	}
	h.Created(c, result)
}

// GetByReference returns all ledger entries of one transfer: both legs and
// any compensating adjustment
func (h *TransferHandler) GetByReference(c *gin.Context) {
	entries, err := h.transferService.FindByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
