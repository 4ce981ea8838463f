package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shopledger/backend/internal/domain/shared"
)

// OutboxStatsSource reports outbox entry counts per delivery status.
type OutboxStatsSource interface {
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// OutboxHandler exposes the delivery state of the ledger event feed
type OutboxHandler struct {
	BaseHandler
	stats OutboxStatsSource
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(stats OutboxStatsSource) *OutboxHandler {
	return &OutboxHandler{stats: stats}
}

// RegisterRoutes registers all outbox routes
func (h *OutboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/outbox/stats", h.GetStats)
}

// OutboxStatsResponse summarizes outbox entries per delivery status
type OutboxStatsResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetStats reports how many staged events are waiting, in flight,
// delivered, or parked in the dead letter state. A growing dead count
// means subscribers are rejecting events and the feed needs attention.
func (h *OutboxHandler) GetStats(c *gin.Context) {
	counts, err := h.stats.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := OutboxStatsResponse{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	resp.Total = resp.Pending + resp.Processing + resp.Sent + resp.Failed + resp.Dead

	h.Success(c, resp)
}
