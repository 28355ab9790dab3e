package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newPrediction(userID string, createdAt time.Time, input datatypes.JSONMap) *Prediction {
	return &Prediction{
		CreatedAt:        createdAt,
		UserID:           userID,
		InputData:        input,
		PredictionResult: datatypes.JSONMap{"ok": true},
	}
}

func TestStore_CreateGetRoundtrip(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[Prediction](gdb)

	rec := newPrediction("owner-a", time.Time{}, datatypes.JSONMap{"x": float64(1), "note": "colic?"})
	require.NoError(t, store.Create(rec))
	require.NotEmpty(t, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())

	got, err := store.Get("owner-a", rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, "owner-a", got.UserID)
	require.Equal(t, datatypes.JSONMap{"x": float64(1), "note": "colic?"}, got.InputData)
}

func TestStore_OwnershipIsolation(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[Prediction](gdb)

	rec := newPrediction("owner-a", time.Time{}, datatypes.JSONMap{"x": float64(1)})
	require.NoError(t, store.Create(rec))

	// Another owner presenting a valid id must see NotFound, never the
	// record and never a distinguishable error.
	_, err := store.Get("owner-b", rec.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Update("owner-b", rec.ID, map[string]any{
		"input_data": datatypes.JSONMap{"x": float64(2)},
	})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Delete("owner-b", rec.ID), ErrNotFound)

	recs, err := store.List("owner-b", 0, 10)
	require.NoError(t, err)
	require.Empty(t, recs)

	// The record is untouched for its real owner.
	got, err := store.Get("owner-a", rec.ID)
	require.NoError(t, err)
	require.Equal(t, datatypes.JSONMap{"x": float64(1)}, got.InputData)
}

func TestStore_InvalidID(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[Prediction](gdb)

	_, err := store.Get("owner-a", "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = store.Update("owner-a", "not-a-uuid", map[string]any{})
	require.ErrorIs(t, err, ErrInvalidID)

	require.ErrorIs(t, store.Delete("not-a-uuid", "also-bad"), ErrInvalidID)
}

func TestStore_Update(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[Prediction](gdb)

	rec := newPrediction("owner-a", time.Time{}, datatypes.JSONMap{"x": float64(1)})
	require.NoError(t, store.Create(rec))
	createdAt := rec.CreatedAt

	now := time.Now()
	updated, err := store.Update("owner-a", rec.ID, map[string]any{
		"input_data":        datatypes.JSONMap{"x": float64(2)},
		"prediction_result": datatypes.JSONMap{"y": float64(4)},
		"updated_at":        &now,
	})
	require.NoError(t, err)

	require.Equal(t, rec.ID, updated.ID)
	require.Equal(t, "owner-a", updated.UserID)
	require.Equal(t, datatypes.JSONMap{"x": float64(2)}, updated.InputData)
	require.Equal(t, datatypes.JSONMap{"y": float64(4)}, updated.PredictionResult)
	require.NotNil(t, updated.UpdatedAt)
	require.WithinDuration(t, createdAt, updated.CreatedAt, time.Second)
}

func TestStore_Delete(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[Prediction](gdb)

	rec := newPrediction("owner-a", time.Time{}, datatypes.JSONMap{"x": float64(1)})
	require.NoError(t, store.Create(rec))

	require.NoError(t, store.Delete("owner-a", rec.ID))

	_, err := store.Get("owner-a", rec.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Delete("owner-a", rec.ID), ErrNotFound)
}

func TestStore_ListPagination(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[Prediction](gdb)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := newPrediction("owner-a", base.Add(time.Duration(i)*time.Minute),
			datatypes.JSONMap{"n": float64(i)})
		require.NoError(t, store.Create(rec))
	}
	// Noise from another owner must never appear in the pages.
	noise := newPrediction("owner-b", base.Add(time.Hour), datatypes.JSONMap{"n": float64(99)})
	require.NoError(t, store.Create(noise))

	full, err := store.List("owner-a", 0, 100)
	require.NoError(t, err)
	require.Len(t, full, 5)

	// Newest first.
	for i := 1; i < len(full); i++ {
		require.False(t, full[i].CreatedAt.After(full[i-1].CreatedAt))
	}

	// Pages of 2 are disjoint, contiguous and cover the full fetch.
	var paged []Prediction
	for offset := 0; offset < 6; offset += 2 {
		page, err := store.List("owner-a", offset, 2)
		require.NoError(t, err)
		paged = append(paged, page...)
	}
	require.Len(t, paged, 5)
	for i := range full {
		require.Equal(t, full[i].ID, paged[i].ID, fmt.Sprintf("position %d", i))
	}
}
