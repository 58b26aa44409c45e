// Package storage persists offline run artifacts under a data directory:
// one subdirectory per run holding metadata.json and states.csv. These
// are recorded measurements, not resumable simulation state.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/kirolan/orbitlab/internal/sim"
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
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Mode      string             `json:"mode"`
	Engine    string             `json:"engine"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Speed     float64            `json:"speed"`
	BodyIDs   []string           `json:"body_ids"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run to disk and returns its id. The CSV columns are fixed
// by the initial snapshot's body set; bodies removed by merges leave
// empty cells in later rows.
func (s *Store) Save(scenario, mode, engine string, dt, duration, speed float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", scenario, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var bodyIDs []string
	if len(result.Snapshots) > 0 {
		for _, b := range result.Snapshots[0] {
			bodyIDs = append(bodyIDs, b.ID)
		}
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  scenario,
		Timestamp: time.Now(),
		Mode:      mode,
		Engine:    engine,
		Dt:        dt,
		Duration:  duration,
		Speed:     speed,
		BodyIDs:   bodyIDs,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, id := range bodyIDs {
		header = append(header, id+"_x", id+"_y")
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, snapshot := range result.Snapshots {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}

		pos := make(map[string]mgl64.Vec2, len(snapshot))
		for _, b := range snapshot {
			pos[b.ID] = b.Pos
		}
		for _, id := range bodyIDs {
			if p, ok := pos[id]; ok {
				row = append(row,
					strconv.FormatFloat(p.X(), 'f', 6, 64),
					strconv.FormatFloat(p.Y(), 'f', 6, 64))
			} else {
				row = append(row, "", "")
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads back the recorded trajectory: a time series plus, for
// each step, the positions of the bodies still alive at that step.
func (s *Store) LoadStates(runID string) ([]float64, []map[string]mgl64.Vec2, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("run %s: empty states file", runID)
	}

	header := rows[0]
	var ids []string
	for i := 1; i < len(header); i += 2 {
		ids = append(ids, header[i][:len(header[i])-2]) // strip "_x"
	}

	var times []float64
	var positions []map[string]mgl64.Vec2

	for _, row := range rows[1:] {
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, nil, err
		}
		times = append(times, t)

		pos := make(map[string]mgl64.Vec2, len(ids))
		for k, id := range ids {
			xs, ys := row[1+k*2], row[2+k*2]
			if xs == "" || ys == "" {
				continue
			}
			x, err := strconv.ParseFloat(xs, 64)
			if err != nil {
				return nil, nil, err
			}
			y, err := strconv.ParseFloat(ys, 64)
			if err != nil {
				return nil, nil, err
			}
			pos[id] = mgl64.Vec2{x, y}
		}
		positions = append(positions, pos)
	}

	return times, positions, nil
}

// ExportJSON writes a run's metadata and trajectory as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, times []float64, positions []map[string]mgl64.Vec2) error {
	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	type step struct {
		Time   float64          `json:"time"`
		Bodies map[string]point `json:"bodies"`
	}

	steps := make([]step, len(times))
	for i := range times {
		bodies := make(map[string]point, len(positions[i]))
		for id, p := range positions[i] {
			bodies[id] = point{X: p.X(), Y: p.Y()}
		}
		steps[i] = step{Time: times[i], Bodies: bodies}
	}

	out := struct {
		Meta  *RunMetadata `json:"meta"`
		Steps []step       `json:"steps"`
	}{Meta: meta, Steps: steps}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
