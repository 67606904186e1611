package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/sim"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Gait         gait.Params        `json:"gait"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	HoldDuration float64            `json:"hold_duration"`
	Synchronous  bool               `json:"synchronous"`
	Integrator   string             `json:"integrator"`
	Ticks        int                `json:"ticks"`
	ReleasedAt   float64            `json:"released_at"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Columns names the CSV columns written for every tick.
func Columns() []string {
	cols := []string{"time"}
	for _, prefix := range []string{"cmd_angle", "cmd_vel", "theta", "omega"} {
		for i := 0; i < dynamo.NumLegs; i++ {
			cols = append(cols, fmt.Sprintf("%s%d", prefix, i))
		}
	}
	return append(cols, "reward")
}

// Save writes meta and the tick log of result under a new run directory and
// returns the run ID. meta.ID, Timestamp, Ticks and ReleasedAt are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	id := xid.New()
	meta.ID = fmt.Sprintf("%s_%s", meta.Name, id.String())
	meta.Timestamp = id.Time()
	meta.Ticks = result.Ticks
	meta.ReleasedAt = result.ReleasedAt
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(Columns()); err != nil {
		return "", err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for i := range result.Times {
		row := []string{format(result.Times[i])}
		for slot := 0; slot < dynamo.MinCommandDim; slot++ {
			row = append(row, format(result.Commands[i][slot]))
		}
		for j := 0; j < 2*dynamo.NumLegs; j++ {
			v := 0.0
			if j < len(result.States[i]) {
				v = result.States[i][j]
			}
			row = append(row, format(v))
		}
		row = append(row, format(result.Rewards[i]))

		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Ticks is a loaded tick log: one row per tick, columns as in [Columns]
// without the leading time.
type Ticks struct {
	Times []float64
	Rows  [][]float64
}

// Column extracts one named column, or nil if the name is unknown.
func (t *Ticks) Column(name string) []float64 {
	cols := Columns()
	idx := -1
	for i, c := range cols {
		if c == name {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		return nil
	case idx == 0:
		return t.Times
	}

	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if idx-1 < len(row) {
			out[i] = row[idx-1]
		}
	}
	return out
}

func (s *Store) LoadTicks(runID string) (*Ticks, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	ticks := &Ticks{}
	if len(records) < 2 {
		return ticks, nil
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: bad time %q in %s: %w", record[0], runID, err)
		}

		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: bad value %q in %s: %w", field, runID, err)
			}
			row = append(row, v)
		}
		ticks.Times = append(ticks.Times, t)
		ticks.Rows = append(ticks.Rows, row)
	}
	return ticks, nil
}
