package handlers

import "github.com/valyala/fasthttp"

// Root serves the service metadata the mobile client probes on startup.
func Root() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{
			"message": "Welcome to Neoparental Prediction API",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"auth":              "/auth",
				"predictions":       "/predictions",
				"audio_predictions": "/audio-predictions",
				"metrics":           "/metrics",
			},
		})
	}
}

// Health is the liveness probe.
func Health() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, fasthttp.StatusOK, map[string]string{"status": "healthy"})
	}
}
