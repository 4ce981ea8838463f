package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopledger/backend/internal/application/ledger"
)

// StockHandler handles stock adjustment and movement audit endpoints
type StockHandler struct {
	BaseHandler
	engine  TransactionService
	queries QueryService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(engine TransactionService, queries QueryService) *StockHandler {
	return &StockHandler{engine: engine, queries: queries}
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/ledger/stock")
	stock.POST("/adjust", h.Adjust)
	stock.GET("/movements", h.ListMovements)
	stock.GET("/items/:id", h.GetItemStock)
}

// Adjust applies a manual stock correction outside the normal trade flow
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identity required")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req ledger.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	adjustment, err := h.engine.AdjustStock(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, adjustment)
}

// ListMovements retrieves the stock movement audit trail. The result is
// paginated but carries no total count.
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identity required")
		return
	}

	var filter ledger.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	movements, err := h.queries.ListStockMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, movements)
}

// GetItemStock retrieves the current stock position of an item
func (h *StockHandler) GetItemStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identity required")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	stock, err := h.queries.GetItemStock(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stock)
}
