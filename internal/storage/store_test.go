package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/sim"
	"github.com/kirolan/orbitlab/internal/space"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Snapshots: [][]space.Body{
			{
				{ID: "1", Mass: 100, Pos: mgl64.Vec2{0, 0}},
				{ID: "2", Mass: 50, Pos: mgl64.Vec2{150, 0}},
			},
			{
				{ID: "1", Mass: 100, Pos: mgl64.Vec2{0, 0}},
				{ID: "2", Mass: 50, Pos: mgl64.Vec2{149, 12}},
			},
		},
		Times:   []float64{0, 0.1},
		Metrics: map[string]float64{"energy": -41.5, "bodies": 2},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("solar", "orbit", "leapfrog", 0.1, 1.0, 1.0, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" || !strings.HasPrefix(runID, "solar_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "solar" || meta.Mode != "orbit" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["energy"] != -41.5 {
		t.Errorf("expected energy -41.5, got %f", meta.Metrics["energy"])
	}
	if len(meta.BodyIDs) != 2 {
		t.Errorf("expected 2 body ids, got %v", meta.BodyIDs)
	}

	times, positions, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(times) != 2 || len(positions) != 2 {
		t.Fatalf("expected 2 steps, got %d times %d positions", len(times), len(positions))
	}
	if positions[1]["2"] != (mgl64.Vec2{149, 12}) {
		t.Errorf("expected (149,12) for body 2, got %v", positions[1]["2"])
	}
}

func TestStoreMergedBodyLeavesGap(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result := sampleResult()
	// Body 2 is absorbed in the second snapshot.
	result.Snapshots[1] = result.Snapshots[1][:1]

	runID, err := st.Save("merge", "physics", "leapfrog", 0.1, 1.0, 1.0, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	_, positions, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if _, alive := positions[1]["2"]; alive {
		t.Error("merged body should be absent from later steps")
	}
	if _, alive := positions[1]["1"]; !alive {
		t.Error("surviving body missing from later steps")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save("a", "orbit", "leapfrog", 0.1, 1, 1, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("b", "physics", "euler", 0.1, 1, 1, sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{ID: "x_1", Scenario: "x"}
	times := []float64{0}
	positions := []map[string]mgl64.Vec2{{"1": {3, 4}}}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, times, positions); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"id": "x_1"`, `"x": 3`, `"y": 4`} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %s:\n%s", want, out)
		}
	}
}
