package handler

import (
	"net/http"
	"strings"

	"crypto-watchtower/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPrice returns the cached quote for one asset.
func (h *Handler) GetPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	snap := h.priceService.CachedSnapshot(ctx)
	quote, ok := snap.Quote(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no quote available for " + symbol})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     symbol,
		"quote":      quote,
		"fetched_at": snap.FetchedAt,
	})
}

// GetAllPrices returns the cached snapshot for every supported asset.
func (h *Handler) GetAllPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-all-prices")
	defer span.End()

	snap := h.priceService.CachedSnapshot(ctx)

	c.JSON(http.StatusOK, gin.H{
		"prices":     snap.Quotes,
		"fetched_at": snap.FetchedAt,
	})
}
