package handlers

import (
	"bytes"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

var (
	requestsTotal          *prometheus.CounterVec
	requestDurationBuckets *prometheus.HistogramVec
)

func InitPrometheusMetrics() {
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neoparental",
			Name:      "http_requests_total",
			Help:      "Total number of handled HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	requestDurationBuckets = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "neoparental",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)
	prometheus.MustRegister(requestsTotal, requestDurationBuckets)
}

// RequestLogger logs one line per request.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}

// RequestMetrics records every request into the prometheus counters.
// Scrape-path traffic is skipped to keep the series clean.
func RequestMetrics(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)

		path := string(ctx.Path())
		if path == "/metrics" || path == "/healthz" {
			return
		}

		method := string(ctx.Method())
		status := strconv.Itoa(ctx.Response.StatusCode())
		requestsTotal.WithLabelValues(method, path, status).Inc()
		requestDurationBuckets.WithLabelValues(method, path).
			Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the Prometheus text exposition format. By
// default only service-namespace families are exposed; ?full=1 adds
// the runtime and process collectors.
func MetricsHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to gather metrics")
			return
		}

		if !ctx.QueryArgs().Has("full") {
			filtered := make([]*dto.MetricFamily, 0, len(metricFamilies))
			for _, mf := range metricFamilies {
				if strings.HasPrefix(mf.GetName(), "neoparental_") {
					filtered = append(filtered, mf)
				}
			}
			metricFamilies = filtered
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}
