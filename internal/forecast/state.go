package forecast

import (
	"encoding/json"
	"fmt"

	"github.com/Alias1177/RevenueIntel/models"
)

const stateVersion = 1

// modelState is the serialized form of a fitted model. JSON keeps float64
// values exactly (shortest round-trip encoding), so an imported model
// reproduces its forecasts bit-for-bit.
type modelState struct {
	Version    int           `json:"version"`
	Schema     FeatureSchema `json:"schema"`
	Forest     *forest       `json:"forest"`
	MAE        float64       `json:"mae"`
	LastPeriod models.Period `json:"last_period"`
	LastTrend  int           `json:"last_trend"`
	Tail       []float64     `json:"tail"`
}

// ExportState serializes a fitted model into an opaque blob.
func ExportState(m *FittedModel) ([]byte, error) {
	if m == nil || m.forest == nil {
		return nil, fmt.Errorf("export of nil model")
	}
	return json.Marshal(modelState{
		Version:    stateVersion,
		Schema:     m.schema,
		Forest:     m.forest,
		MAE:        m.mae,
		LastPeriod: m.lastPeriod,
		LastTrend:  m.lastTrend,
		Tail:       m.tail,
	})
}

// ImportState restores a fitted model from an exported blob, verifying the
// feature schema still matches the stored ensemble.
func ImportState(data []byte) (*FittedModel, error) {
	var state modelState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding model state: %w", err)
	}
	if state.Version != stateVersion {
		return nil, fmt.Errorf("unsupported model state version %d", state.Version)
	}
	if state.Forest == nil || len(state.Forest.Trees) == 0 {
		return nil, fmt.Errorf("model state holds no trees")
	}
	if state.Forest.Features != state.Schema.Size() {
		return nil, &models.SchemaMismatchError{
			Want: state.Schema.String(),
			Got:  fmt.Sprintf("%d-feature model", state.Forest.Features),
		}
	}
	if len(state.Tail) != state.Schema.Lags {
		return nil, &models.SchemaMismatchError{
			Want: state.Schema.String(),
			Got:  fmt.Sprintf("%d-value lag window", len(state.Tail)),
		}
	}

	return &FittedModel{
		schema:     state.Schema,
		forest:     state.Forest,
		mae:        state.MAE,
		lastPeriod: state.LastPeriod,
		lastTrend:  state.LastTrend,
		tail:       state.Tail,
	}, nil
}
