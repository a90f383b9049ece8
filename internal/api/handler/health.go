package handler

import (
	"context"
	"net/http"

	"github.com/acousticlabs/trainyard/internal/api/response"
)

// Pinger is anything that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns the handler for GET /api/v1/health. It reports
// degraded with a per-dependency breakdown when any dependency fails.
func NewHealthHandler(db, cache, provider Pinger) http.HandlerFunc {
	check := func(ctx context.Context, p Pinger) string {
		if p.Ping(ctx) != nil {
			return "degraded"
		}
		return "ok"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		details := map[string]string{
			"database": check(r.Context(), db),
			"cache":    check(r.Context(), cache),
			"compute":  check(r.Context(), provider),
		}

		for _, status := range details {
			if status != "ok" {
				response.Error(w, http.StatusServiceUnavailable,
					"DEGRADED", "One or more dependencies degraded", details)
				return
			}
		}
		response.JSON(w, map[string]string{"status": "ok"})
	}
}
