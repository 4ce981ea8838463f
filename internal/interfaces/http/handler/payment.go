package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shopledger/backend/internal/application/ledger"
)

// PaymentHandler handles balance settlement endpoints
type PaymentHandler struct {
	BaseHandler
	engine  TransactionService
	queries QueryService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(engine TransactionService, queries QueryService) *PaymentHandler {
	return &PaymentHandler{engine: engine, queries: queries}
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/ledger/payments")
	payments.POST("", h.Record)
	payments.GET("", h.List)
}

// Record settles part of a customer or supplier balance. Overpayment past
// zero is rejected.
func (h *PaymentHandler) Record(c *gin.Context) {
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

	var req ledger.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyKeyHeader)

	payment, err := h.engine.RecordPayment(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// List retrieves a paginated list of payments with optional filtering
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identity required")
		return
	}

	var filter ledger.PaymentListFilter
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

	payments, total, err := h.queries.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}
