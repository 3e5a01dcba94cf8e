package handler

import (
	"context"

	"crypto-watchtower/internal/domain"
	"crypto-watchtower/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// TargetStateReader exposes the persisted per-target progress.
type TargetStateReader interface {
	All() map[string]domain.TargetState
}

// AlertLister reads from the alert archive. Nil when archiving is disabled.
type AlertLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Alert, error)
}

type Handler struct {
	tracer        trace.Tracer
	priceService  *service.PriceService
	levelService  *service.LevelService
	targetService *service.TargetService
	states        TargetStateReader
	alerts        AlertLister
}

func New(
	tracer trace.Tracer,
	priceService *service.PriceService,
	levelService *service.LevelService,
	targetService *service.TargetService,
	states TargetStateReader,
	alerts AlertLister,
) *Handler {
	return &Handler{
		tracer:        tracer,
		priceService:  priceService,
		levelService:  levelService,
		targetService: targetService,
		states:        states,
		alerts:        alerts,
	}
}

// RegisterRoutes mounts the read-only API. The /api group is gated by the
// configured key; /health stays open for probes.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/prices", h.GetAllPrices)
	api.GET("/prices/:symbol", h.GetPrice)
	api.GET("/levels", h.GetLevels)
	api.GET("/targets", h.GetTargets)
	api.GET("/alerts", h.GetAlerts)
}
