package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopledger/backend/internal/application/ledger"
)

// BalanceHandler handles entity balance endpoints
type BalanceHandler struct {
	BaseHandler
	engine  TransactionService
	queries QueryService
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(engine TransactionService, queries QueryService) *BalanceHandler {
	return &BalanceHandler{engine: engine, queries: queries}
}

// RegisterRoutes registers all balance routes
func (h *BalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	balance := rg.Group("/ledger/balance")
	balance.POST("/override", h.Override)
	balance.GET("/:kind/:id", h.Get)
	balance.GET("/:kind/:id/entries", h.ListEntries)
}

// Override sets an entity balance to an absolute value, recording the
// correction as an audit entry
func (h *BalanceHandler) Override(c *gin.Context) {
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

	var req ledger.OverrideBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	override, err := h.engine.OverrideBalance(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, override)
}

// Get retrieves the current balance of a customer or supplier. With
// verify=true it instead replays the audit trail and reports any drift
// between the replayed and stored balances.
func (h *BalanceHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identity required")
		return
	}

	kind := c.Param("kind")
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	if c.Query("verify") == "true" {
		drift, err := h.queries.CheckBalanceDrift(c.Request.Context(), tenantID, kind, entityID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, drift)
		return
	}

	balance, err := h.queries.GetEntityBalance(c.Request.Context(), tenantID, kind, entityID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// ListEntries retrieves the balance audit trail of a customer or supplier
func (h *BalanceHandler) ListEntries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identity required")
		return
	}

	kind := c.Param("kind")
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var filter ledger.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	entries, total, err := h.queries.ListBalanceEntries(c.Request.Context(), tenantID, kind, entityID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}
