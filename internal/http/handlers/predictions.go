package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"

	dbpkg "github.com/FabCode67/neoparental/internal/db"
	"github.com/FabCode67/neoparental/internal/gateway"
)

// defaultPredictionsLimit is the generic-predictions page size.
const defaultPredictionsLimit = 10

type predictionRequest struct {
	InputData map[string]any `json:"input_data"`
}

type predictionResponse struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	InputData        map[string]any `json:"input_data"`
	PredictionResult map[string]any `json:"prediction_result"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty"`
}

func toPredictionResponse(p *dbpkg.Prediction) predictionResponse {
	return predictionResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		InputData:        p.InputData,
		PredictionResult: p.PredictionResult,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// storeErr translates resource-store failures for prediction routes.
func storeErr(ctx *fasthttp.RequestCtx, err error, notFoundDetail string) {
	switch {
	case errors.Is(err, dbpkg.ErrInvalidID):
		errResponse(ctx, fasthttp.StatusBadRequest, "Invalid prediction ID")
	case errors.Is(err, dbpkg.ErrNotFound):
		errResponse(ctx, fasthttp.StatusNotFound, notFoundDetail)
	default:
		errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
	}
}

// CreatePrediction proxies input to the prediction API and stores the
// verdict alongside it.
func CreatePrediction(store *dbpkg.Store[dbpkg.Prediction], gw *gateway.Client) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		var req predictionRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := gw.Predict(ctx, req.InputData)
		if err != nil {
			errResponse(ctx, fasthttp.StatusServiceUnavailable, "Failed to get prediction from API")
			return
		}

		rec := dbpkg.Prediction{
			UserID:           user.ID,
			InputData:        datatypes.JSONMap(req.InputData),
			PredictionResult: datatypes.JSONMap(result),
		}
		if err := store.Create(&rec); err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to save prediction")
			return
		}

		jsonResponse(ctx, fasthttp.StatusCreated, toPredictionResponse(&rec))
	}
}

// ListPredictions returns the caller's predictions newest-first.
func ListPredictions(store *dbpkg.Store[dbpkg.Prediction]) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		skip, limit := parsePage(ctx, defaultPredictionsLimit)
		recs, err := store.List(user.ID, skip, limit)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		out := make([]predictionResponse, 0, len(recs))
		for i := range recs {
			out = append(out, toPredictionResponse(&recs[i]))
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}

// GetPrediction returns one prediction by id.
func GetPrediction(store *dbpkg.Store[dbpkg.Prediction]) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		rec, err := store.Get(user.ID, recordID(ctx))
		if err != nil {
			storeErr(ctx, err, "Prediction not found")
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, toPredictionResponse(rec))
	}
}

// UpdatePrediction re-runs the oracle with new input data and stores
// the fresh verdict in place.
func UpdatePrediction(store *dbpkg.Store[dbpkg.Prediction], gw *gateway.Client) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		var req predictionRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		// Ownership check before spending a gateway call.
		if _, err := store.Get(user.ID, recordID(ctx)); err != nil {
			storeErr(ctx, err, "Prediction not found")
			return
		}

		result, err := gw.Predict(ctx, req.InputData)
		if err != nil {
			errResponse(ctx, fasthttp.StatusServiceUnavailable, "Failed to get prediction from API")
			return
		}

		now := time.Now()
		rec, err := store.Update(user.ID, recordID(ctx), map[string]any{
			"input_data":        datatypes.JSONMap(req.InputData),
			"prediction_result": datatypes.JSONMap(result),
			"updated_at":        &now,
		})
		if err != nil {
			storeErr(ctx, err, "Prediction not found")
			return
		}

		jsonResponse(ctx, fasthttp.StatusOK, toPredictionResponse(rec))
	}
}

// DeletePrediction removes one prediction by id.
func DeletePrediction(store *dbpkg.Store[dbpkg.Prediction]) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		if err := store.Delete(user.ID, recordID(ctx)); err != nil {
			storeErr(ctx, err, "Prediction not found")
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}
}
