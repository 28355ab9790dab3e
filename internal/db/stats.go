package db

import (
	"math"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LabelCount is one group of the per-label breakdown.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AudioStats summarizes one user's audio predictions.
type AudioStats struct {
	TotalPredictions   int64        `json:"total_predictions"`
	PredictionsByLabel []LabelCount `json:"predictions_by_label"`
	AverageConfidence  float64      `json:"average_confidence"`
}

// AudioPredictionStats computes the owner's summary on demand: total
// count, per-label counts sorted by count descending, and the mean
// confidence over records that carry one, rounded to two decimals.
func AudioPredictionStats(db *gorm.DB, ownerID string) (*AudioStats, error) {
	var rows []AudioPrediction
	err := db.Where("user_id = ?", ownerID).
		Select("prediction_result").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]datatypes.JSONMap, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.PredictionResult)
	}
	return summarizeResults(results), nil
}

// summarizeResults groups result payloads by predicted_label (records
// without one fall into the "" group) and averages confidence across
// the records where the field is present. With no qualifying records
// the average is exactly 0, never NaN.
func summarizeResults(results []datatypes.JSONMap) *AudioStats {
	counts := make(map[string]int64)
	var confidenceSum float64
	var confidenceN int64

	for _, res := range results {
		label, _ := res["predicted_label"].(string)
		counts[label]++

		if c, ok := numeric(res["confidence"]); ok {
			confidenceSum += c
			confidenceN++
		}
	}

	byLabel := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		byLabel = append(byLabel, LabelCount{Label: label, Count: count})
	}
	// Count descending; ties break on label so repeated computations
	// return identical output.
	sort.Slice(byLabel, func(i, j int) bool {
		if byLabel[i].Count != byLabel[j].Count {
			return byLabel[i].Count > byLabel[j].Count
		}
		return byLabel[i].Label < byLabel[j].Label
	})

	avg := 0.0
	if confidenceN > 0 {
		avg = math.Round(confidenceSum/float64(confidenceN)*100) / 100
	}

	return &AudioStats{
		TotalPredictions:   int64(len(results)),
		PredictionsByLabel: byLabel,
		AverageConfidence:  avg,
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
