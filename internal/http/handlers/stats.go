package handlers

import (
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "github.com/FabCode67/neoparental/internal/db"
)

// AudioPredictionStats returns the caller's aggregated summary:
// total count, per-label counts (descending) and average confidence.
func AudioPredictionStats(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		stats, err := dbpkg.AudioPredictionStats(db, user.ID)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to compute stats")
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, stats)
	}
}
