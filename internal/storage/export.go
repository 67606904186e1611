package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Columns []string    `json:"columns"`
	Times   []float64   `json:"times"`
	Rows    [][]float64 `json:"rows"`
}

// ExportJSON writes a stored run, metadata and tick log, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Meta:    *meta,
		Columns: Columns()[1:],
		Times:   ticks.Times,
		Rows:    ticks.Rows,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
