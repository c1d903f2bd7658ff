package models

import "time"

// SourcePanel marks a series read back from a built panel. Its values are
// already normalized, so unit rules leave it alone.
const SourcePanel = "panel"

// RawSeries is one source column as retrieved: ascending, unique timestamps,
// no gaps filled and no units converted.
type RawSeries struct {
	ID     string      `json:"id"`
	Source string      `json:"source,omitempty"`
	Index  []time.Time `json:"index"`
	Values []Value     `json:"values"`
}

func (s *RawSeries) Len() int {
	return len(s.Index)
}

// SeriesSpec is the explicit retrieval mapping for one raw series.
type SeriesSpec struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Ref          string   `json:"ref"`
	DateColumn   string   `json:"date_column"`
	ValueColumns []string `json:"value_columns"`
	Description  string   `json:"description,omitempty"`
}

// RemoteRef is the code the source knows the series by.
func (s SeriesSpec) RemoteRef() string {
	if s.Ref != "" {
		return s.Ref
	}
	return s.ID
}
