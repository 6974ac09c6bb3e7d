package forecast

import (
	"fmt"

	"github.com/Alias1177/RevenueIntel/models"
)

// FeatureSchema describes the feature vector layout fixed at fit time:
// calendar month (1..12), year, ordinal trend index, then Lags trailing
// revenue values (lag_1 first, the most recent). Predict-time vectors must
// reproduce this layout exactly.
type FeatureSchema struct {
	Lags int `json:"lags"`
}

// Size returns the feature vector width.
func (s FeatureSchema) Size() int {
	return 3 + s.Lags
}

func (s FeatureSchema) String() string {
	return fmt.Sprintf("month/year/trend+%dlag", s.Lags)
}

// vector builds the feature row for one period. window holds prior revenue
// values in chronological order and must contain at least Lags entries.
func (s FeatureSchema) vector(p models.Period, trend int, window []float64) []float64 {
	v := make([]float64, 0, s.Size())
	v = append(v, float64(p.Month), float64(p.Year), float64(trend))
	for i := 1; i <= s.Lags; i++ {
		v = append(v, window[len(window)-i])
	}
	return v
}

// trainingData builds the (features, revenue) pairs for a chronological
// series. The first Lags periods only seed lag windows and produce no rows.
func (s FeatureSchema) trainingData(series []models.MonthlyAggregate) (X [][]float64, y []float64) {
	revenues := make([]float64, len(series))
	for i, agg := range series {
		revenues[i] = agg.Revenue
	}

	for i := s.Lags; i < len(series); i++ {
		X = append(X, s.vector(series[i].Period, i, revenues[:i]))
		y = append(y, series[i].Revenue)
	}
	return X, y
}
