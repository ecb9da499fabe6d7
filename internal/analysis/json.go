package analysis

import (
	"encoding/json"
	"math"
)

// JSON has no NaN; undefined statistics are written as null.
func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// MarshalJSON implements json.Marshaler.
func (s ColumnSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Kind  Kind     `json:"kind"`
		Count int      `json:"count"`
		Mean  *float64 `json:"mean"`
		Std   *float64 `json:"std"`
		Min   *float64 `json:"min"`
		P25   *float64 `json:"25%"`
		P50   *float64 `json:"50%"`
		P75   *float64 `json:"75%"`
		Max   *float64 `json:"max"`
	}{
		Name: s.Name, Kind: s.Kind, Count: s.Count,
		Mean: jsonFloat(s.Mean), Std: jsonFloat(s.Std), Min: jsonFloat(s.Min),
		P25: jsonFloat(s.P25), P50: jsonFloat(s.P50), P75: jsonFloat(s.P75), Max: jsonFloat(s.Max),
	})
}

// MarshalJSON implements json.Marshaler.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j, v := range row {
			vals[i][j] = jsonFloat(v)
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{Columns: m.Columns, Values: vals})
}
