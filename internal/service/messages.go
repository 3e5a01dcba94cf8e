package service

import (
	"fmt"
	"strconv"
	"time"

	"crypto-watchtower/internal/domain"
)

// Alert timestamps are rendered in the user's home timezone, falling back to
// UTC when the zone database is unavailable.
var alertTZ = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// Timestamp formats a time the way alerts display it.
func Timestamp(t time.Time) string {
	return t.In(alertTZ).Format("2006-01-02 15:04:05 MST")
}

// priceLine renders the current price of a quote, or "Price: n/a" unless
// both currencies are known.
func priceLine(q domain.PriceQuote) string {
	if q.EUR == nil || q.USD == nil {
		return "Price: n/a"
	}
	return fmt.Sprintf("Price: %.2f € / $%.2f", *q.EUR, *q.USD)
}

// fmtLevel renders a configured threshold without trailing zeros, so 113000
// prints as "113000" and 0.95 as "0.95".
func fmtLevel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
