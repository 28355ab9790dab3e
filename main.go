package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"github.com/FabCode67/neoparental/internal/blob"
	"github.com/FabCode67/neoparental/internal/config"
	"github.com/FabCode67/neoparental/internal/db"
	"github.com/FabCode67/neoparental/internal/gateway"
	"github.com/FabCode67/neoparental/internal/http/handlers"
	appmw "github.com/FabCode67/neoparental/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("APP_JWT_SECRET is required")
	}
	if cfg.PredictionAPIURL == "" {
		log.Fatal("APP_PREDICTION_API_URL is required")
	}

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	var blobs blob.Store
	if cfg.S3Bucket != "" {
		blobs, err = blob.NewS3Store(cfg)
		if err != nil {
			log.Fatalf("failed to init S3 blob store: %v", err)
		}
		log.Printf("audio storage: s3 bucket %q", cfg.S3Bucket)
	} else {
		blobs, err = blob.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("failed to init local blob store: %v", err)
		}
		log.Printf("audio storage: local directory %q", cfg.UploadDir)
	}

	db.StartOrphanSweeper(sqlDB, blobs)

	gw := gateway.NewClient(cfg.PredictionAPIURL)
	predictions := db.NewStore[db.Prediction](sqlDB)
	audioPredictions := db.NewStore[db.AudioPrediction](sqlDB)

	handlers.InitPrometheusMetrics()

	r := router.New()
	secret := []byte(cfg.JWTSecret)
	authed := appmw.BearerAuth(sqlDB, secret)

	r.GET("/", handlers.Root())
	r.GET("/health", handlers.Health())
	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.MetricsHandler())

	r.POST("/auth/register", handlers.Register(sqlDB))
	r.POST("/auth/login", handlers.Login(sqlDB, cfg))
	r.GET("/auth/me", authed(handlers.Me()))

	r.POST("/predictions/", authed(handlers.CreatePrediction(predictions, gw)))
	r.GET("/predictions/", authed(handlers.ListPredictions(predictions)))
	r.GET("/predictions/{id}", authed(handlers.GetPrediction(predictions)))
	r.PUT("/predictions/{id}", authed(handlers.UpdatePrediction(predictions, gw)))
	r.DELETE("/predictions/{id}", authed(handlers.DeletePrediction(predictions)))

	r.POST("/audio-predictions/", authed(handlers.SaveAudioPrediction(audioPredictions, blobs)))
	r.GET("/audio-predictions/", authed(handlers.ListAudioPredictions(audioPredictions)))
	r.GET("/audio-predictions/stats/summary", authed(handlers.AudioPredictionStats(sqlDB)))
	r.GET("/audio-predictions/{id}", authed(handlers.GetAudioPrediction(audioPredictions)))
	r.GET("/audio-predictions/{id}/audio", authed(handlers.GetAudioFile(audioPredictions, blobs)))
	r.DELETE("/audio-predictions/{id}", authed(handlers.DeleteAudioPrediction(audioPredictions, blobs)))

	// Global middleware chain: request logger, then metrics, then router.
	handler := handlers.RequestLogger(handlers.RequestMetrics(r.Handler))

	log.Printf("neoparental api listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
