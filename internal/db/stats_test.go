package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSummarizeResults_Empty(t *testing.T) {
	stats := summarizeResults(nil)
	require.EqualValues(t, 0, stats.TotalPredictions)
	require.Empty(t, stats.PredictionsByLabel)
	require.Zero(t, stats.AverageConfidence)
}

func TestSummarizeResults_GroupsAndAverages(t *testing.T) {
	stats := summarizeResults([]datatypes.JSONMap{
		{"predicted_label": "Hungry", "confidence": 90.0},
		{"predicted_label": "Hungry", "confidence": 80.0},
		{"predicted_label": "Tired", "confidence": 70.5},
		{"predicted_label": "Tired"},
		{"confidence": 60.0}, // label absent
	})

	require.EqualValues(t, 5, stats.TotalPredictions)
	require.Equal(t, []LabelCount{
		{Label: "Hungry", Count: 2},
		{Label: "Tired", Count: 2},
		{Label: "", Count: 1},
	}, stats.PredictionsByLabel)

	// Mean over the four records carrying a confidence: (90+80+70.5+60)/4.
	require.Equal(t, 75.13, stats.AverageConfidence)

	var sum int64
	for _, lc := range stats.PredictionsByLabel {
		sum += lc.Count
	}
	require.Equal(t, stats.TotalPredictions, sum)
}

func TestSummarizeResults_NoConfidenceIsZero(t *testing.T) {
	stats := summarizeResults([]datatypes.JSONMap{
		{"predicted_label": "Hungry"},
		{"predicted_label": "Tired"},
	})
	require.Equal(t, 0.0, stats.AverageConfidence)
}

func TestAudioPredictionStats(t *testing.T) {
	gdb := openTestDB(t)
	store := NewStore[AudioPrediction](gdb)

	insert := func(userID string, result datatypes.JSONMap) {
		rec := &AudioPrediction{
			UserID:           userID,
			AudioFilename:    "cry.wav",
			StorageKey:       "users/" + userID + "/cry.wav",
			AudioSize:        128,
			PredictionResult: result,
		}
		require.NoError(t, store.Create(rec))
	}

	insert("owner-a", datatypes.JSONMap{"predicted_label": "Hungry", "confidence": 85.5})
	insert("owner-a", datatypes.JSONMap{"predicted_label": "Hungry", "confidence": 90.5})
	insert("owner-a", datatypes.JSONMap{"predicted_label": "Sleepy"})
	insert("owner-b", datatypes.JSONMap{"predicted_label": "Gassy", "confidence": 10.0})

	stats, err := AudioPredictionStats(gdb, "owner-a")
	require.NoError(t, err)

	require.EqualValues(t, 3, stats.TotalPredictions)
	require.Equal(t, []LabelCount{
		{Label: "Hungry", Count: 2},
		{Label: "Sleepy", Count: 1},
	}, stats.PredictionsByLabel)
	require.Equal(t, 88.0, stats.AverageConfidence)

	// Idempotent with no intervening writes.
	again, err := AudioPredictionStats(gdb, "owner-a")
	require.NoError(t, err)
	require.Equal(t, stats, again)
}
