package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shopledger/backend/internal/application/ledger"
)

// ReturnHandler handles customer and supplier return endpoints
type ReturnHandler struct {
	BaseHandler
	engine TransactionService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(engine TransactionService) *ReturnHandler {
	return &ReturnHandler{engine: engine}
}

// RegisterRoutes registers all return routes
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledgerGroup := rg.Group("/ledger")
	ledgerGroup.POST("/customer-returns", h.CreateCustomerReturn)
	ledgerGroup.POST("/supplier-returns", h.CreateSupplierReturn)
}

// CreateCustomerReturn processes goods coming back from a customer.
// Refunds credit the customer balance, exchanges leave it untouched.
func (h *ReturnHandler) CreateCustomerReturn(c *gin.Context) {
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

	var req ledger.ProcessCustomerReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	ret, err := h.engine.ProcessCustomerReturn(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ret)
}

// CreateSupplierReturn processes goods going back to a supplier
func (h *ReturnHandler) CreateSupplierReturn(c *gin.Context) {
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

	var req ledger.ProcessSupplierReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	ret, err := h.engine.ProcessSupplierReturn(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ret)
}
