package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"

	"github.com/FabCode67/neoparental/internal/blob"
	dbpkg "github.com/FabCode67/neoparental/internal/db"
)

// defaultAudioLimit is the audio-predictions page size.
const defaultAudioLimit = 20

type audioPredictionResponse struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	AudioFilename    string         `json:"audio_filename"`
	AudioURL         string         `json:"audio_url"`
	AudioSize        int64          `json:"audio_size"`
	AudioDuration    *float64       `json:"audio_duration,omitempty"`
	PredictionResult map[string]any `json:"prediction_result"`
	CreatedAt        time.Time      `json:"created_at"`
}

type audioPredictionListItem struct {
	ID             string    `json:"id"`
	AudioFilename  string    `json:"audio_filename"`
	AudioURL       string    `json:"audio_url"`
	PredictedLabel string    `json:"predicted_label,omitempty"`
	Confidence     *float64  `json:"confidence,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func audioURL(id string) string {
	return fmt.Sprintf("/audio-predictions/%s/audio", id)
}

func toAudioResponse(a *dbpkg.AudioPrediction) audioPredictionResponse {
	return audioPredictionResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		AudioFilename:    a.AudioFilename,
		AudioURL:         audioURL(a.ID),
		AudioSize:        a.AudioSize,
		AudioDuration:    a.AudioDuration,
		PredictionResult: a.PredictionResult,
		CreatedAt:        a.CreatedAt,
	}
}

// audioStoreErr translates resource-store failures for audio routes.
func audioStoreErr(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, dbpkg.ErrInvalidID):
		errResponse(ctx, fasthttp.StatusBadRequest, "Invalid prediction ID")
	case errors.Is(err, dbpkg.ErrNotFound):
		errResponse(ctx, fasthttp.StatusNotFound, "Audio prediction not found")
	default:
		errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
	}
}

// SaveAudioPrediction stores the uploaded audio in the blob store and
// then creates the record. The ordering is deliberate: a failed blob
// write aborts record creation, and a failed record insert triggers a
// best-effort delete of the just-written blob.
func SaveAudioPrediction(store *dbpkg.Store[dbpkg.AudioPrediction], blobs blob.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		fh, err := ctx.FormFile("audio_file")
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "audio_file is required")
			return
		}

		var result map[string]any
		if err := json.Unmarshal(ctx.FormValue("prediction_result"), &result); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "Invalid prediction_result JSON format")
			return
		}

		size := fh.Size
		if v := string(ctx.FormValue("audio_size")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				size = n
			}
		}
		var duration *float64
		if v := string(ctx.FormValue("audio_duration")); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				duration = &f
			}
		}

		src, err := fh.Open()
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "failed to read audio_file")
			return
		}
		defer src.Close()

		key := blob.NewKey(user.ID, fh.Filename)
		if err := blobs.Put(ctx, key, src, fh.Size); err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "Failed to save audio file")
			return
		}

		rec := dbpkg.AudioPrediction{
			UserID:           user.ID,
			AudioFilename:    fh.Filename,
			StorageKey:       key,
			AudioSize:        size,
			AudioDuration:    duration,
			PredictionResult: datatypes.JSONMap(result),
		}
		if err := store.Create(&rec); err != nil {
			// The blob is already written; without the record it is
			// unreachable, so reclaim it. Failures here are the orphan
			// sweeper's problem.
			if delErr := blobs.Delete(ctx, key); delErr != nil {
				log.Printf("warning: could not delete blob %s after failed insert: %v", key, delErr)
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to save audio prediction")
			return
		}

		jsonResponse(ctx, fasthttp.StatusCreated, toAudioResponse(&rec))
	}
}

// ListAudioPredictions returns the caller's audio predictions
// newest-first, projected down to label, confidence and URL.
func ListAudioPredictions(store *dbpkg.Store[dbpkg.AudioPrediction]) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		skip, limit := parsePage(ctx, defaultAudioLimit)
		recs, err := store.List(user.ID, skip, limit)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		out := make([]audioPredictionListItem, 0, len(recs))
		for i := range recs {
			rec := &recs[i]
			item := audioPredictionListItem{
				ID:            rec.ID,
				AudioFilename: rec.AudioFilename,
				AudioURL:      audioURL(rec.ID),
				CreatedAt:     rec.CreatedAt,
			}
			// predicted_label with a fallback to the legacy "output"
			// key some model versions emit.
			if label, ok := rec.PredictionResult["predicted_label"].(string); ok {
				item.PredictedLabel = label
			} else if label, ok := rec.PredictionResult["output"].(string); ok {
				item.PredictedLabel = label
			}
			if c, ok := rec.PredictionResult["confidence"].(float64); ok {
				item.Confidence = &c
			}
			out = append(out, item)
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}

// GetAudioPrediction returns one audio prediction by id.
func GetAudioPrediction(store *dbpkg.Store[dbpkg.AudioPrediction]) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		rec, err := store.Get(user.ID, recordID(ctx))
		if err != nil {
			audioStoreErr(ctx, err)
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, toAudioResponse(rec))
	}
}

// GetAudioFile serves the audio bytes for one prediction: a redirect
// to a presigned URL when the blob store supports it, a direct stream
// otherwise. A record whose blob is gone is a consistency fault and
// surfaces as 404 rather than being papered over.
func GetAudioFile(store *dbpkg.Store[dbpkg.AudioPrediction], blobs blob.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		rec, err := store.Get(user.ID, recordID(ctx))
		if err != nil {
			audioStoreErr(ctx, err)
			return
		}

		if p, ok := blobs.(blob.Presigner); ok {
			url, err := p.PresignGet(ctx, rec.StorageKey)
			if err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to resolve audio file")
				return
			}
			ctx.Redirect(url, fasthttp.StatusTemporaryRedirect)
			return
		}

		rc, err := blobs.Open(ctx, rec.StorageKey)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "Audio file not found on server")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to read audio file")
			return
		}

		ctx.SetContentType("audio/mpeg")
		ctx.Response.Header.Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", rec.AudioFilename))
		ctx.SetBodyStream(rc, -1)
	}
}

// DeleteAudioPrediction removes the record, then the blob best-effort:
// a failed blob delete is logged but never fails the request.
func DeleteAudioPrediction(store *dbpkg.Store[dbpkg.AudioPrediction], blobs blob.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		rec, err := store.Get(user.ID, recordID(ctx))
		if err != nil {
			audioStoreErr(ctx, err)
			return
		}

		if err := store.Delete(user.ID, rec.ID); err != nil {
			audioStoreErr(ctx, err)
			return
		}

		if err := blobs.Delete(ctx, rec.StorageKey); err != nil {
			log.Printf("warning: could not delete audio blob %s: %v", rec.StorageKey, err)
		}

		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}
}
