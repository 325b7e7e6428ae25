package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryanslynch/psrsb/internal/adapter"
	"github.com/ryanslynch/psrsb/internal/logging"
	m "github.com/ryanslynch/psrsb/internal/model"
)

func newTestWorkflow() Workflow {
	return NewWorkflow(adapter.NewSessionStore(), adapter.NewCoordConverter(), adapter.NewBlockStore(), logging.Noop())
}

func TestWorkflowSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	wf := newTestWorkflow()

	obs := m.NewObservationModel()
	obs.GlobalMode = m.ModeCoherentSearch
	obs.IncludeFluxCal = true
	obs.FluxCalSource = "3C286"

	src := foldSource("J1713+0747")
	src.Parfile = ""
	src.DM = floatPtr(0)
	obs.Sources = []m.Source{src}

	if err := wf.Regenerate(ctx, obs); err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}

	if err := obs.EditBlock("L-band Pulsars", "# hand tuned\n"); err != nil {
		t.Fatalf("EditBlock failed: %v", err)
	}

	path := m.Path(filepath.Join(t.TempDir(), "session.yaml"))

	if err := wf.SaveSession(ctx, path, obs); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := wf.LoadSession(ctx, path)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}

	if loaded.GlobalBand != "L-band" || loaded.GlobalMode != m.ModeCoherentSearch {
		t.Errorf("globals = %q/%q, want L-band/coherent_search", loaded.GlobalBand, loaded.GlobalMode)
	}

	if !loaded.IncludeFluxCal || loaded.FluxCalSource != "3C286" {
		t.Error("flux-cal settings lost in round trip")
	}

	if len(loaded.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(loaded.Sources))
	}

	got := loaded.Sources[0]

	if got.DM == nil || *got.DM != 0 {
		t.Error("explicit zero DM did not survive the round trip")
	}

	if got.Params == nil || got.Params.NumChan != obs.Sources[0].Params.NumChan {
		t.Error("resolved params did not survive the round trip")
	}

	// Only the edited block is persisted; generated text is recovered by
	// Regenerate, which keeps the edit.
	if len(loaded.Blocks) != 1 || !loaded.Blocks[0].Edited {
		t.Fatalf("edited blocks = %+v, want exactly the hand-tuned one", loaded.Blocks)
	}

	if err := wf.Regenerate(ctx, loaded); err != nil {
		t.Fatalf("Regenerate after load failed: %v", err)
	}

	blk, ok := loaded.Block("L-band Pulsars")
	if !ok {
		t.Fatal("pulsar block missing after regenerate")
	}

	if blk.Text != "# hand tuned\n" || !blk.Edited {
		t.Errorf("edit lost: text = %q, edited = %t", blk.Text, blk.Edited)
	}

	if blk.Generated == "" || blk.Generated == blk.Text {
		t.Error("generated text not restored alongside the edit")
	}
}

func TestWorkflowImportCatalog(t *testing.T) {
	ctx := context.Background()
	wf := newTestWorkflow()

	dir := t.TempDir()
	path := filepath.Join(dir, "targets.cat")

	catalog := `# observing targets
format = spherical
coordmode = J2000
HEAD = NAME RA DEC
J1713+0747    17:13:49.53   +07:47:37.5
J1909-3744    19:09:47.43   -37:44:14.5
`

	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	obs := m.NewObservationModel()
	obs.Sources = []m.Source{foldSource("J1713+0747")}

	added, err := wf.ImportCatalog(ctx, obs, m.Path(path), floatPtr(900))
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}

	if added != 1 {
		t.Errorf("added = %d, want 1 (duplicate skipped)", added)
	}

	if len(obs.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(obs.Sources))
	}

	got := obs.Sources[1]

	if got.Name != "J1909-3744" || got.Coord1 != "19:09:47.43" || got.Coord2 != "-37:44:14.5" {
		t.Errorf("imported source = %+v", got)
	}

	if got.ScanLengthSec == nil || *got.ScanLengthSec != 900 {
		t.Error("scan length not applied to imported source")
	}

	// The pre-existing source keeps its own scan length.
	if obs.Sources[0].ScanLengthSec == nil || *obs.Sources[0].ScanLengthSec != 1200 {
		t.Error("existing source mutated by import")
	}
}

func TestWorkflowImportCatalogMissingHead(t *testing.T) {
	ctx := context.Background()
	wf := newTestWorkflow()

	path := filepath.Join(t.TempDir(), "plain.cat")
	if err := os.WriteFile(path, []byte("just some text\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	obs := m.NewObservationModel()

	if _, err := wf.ImportCatalog(ctx, obs, m.Path(path), nil); err == nil {
		t.Fatal("expected error for catalog without a head directive")
	}
}

func TestWorkflowLookupPositions(t *testing.T) {
	ctx := context.Background()
	wf := newTestWorkflow()

	db := filepath.Join(t.TempDir(), "psrcat.db")

	fixture := `#CATALOGUE 1.70
PSRJ     J1713+0747
RAJ      17:13:49.5335615          9.000e-07
DECJ     +07:47:37.48847           2.000e-05
@-----------------------------------------------
PSRB     B0531+21
PSRJ     J0534+2200
RAJ      05:34:31.973
DECJ     +22:00:52.06
@-----------------------------------------------
`

	if err := os.WriteFile(db, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	known := foldSource("J1909-3744")
	known.Coord1 = "19:09:47.43"
	known.Coord2 = "-37:44:14.5"

	obs := m.NewObservationModel()
	obs.Sources = []m.Source{
		{Name: "J1713+0747"},
		{Name: "B0531+21"},
		{Name: "J9999+9999"},
		known,
	}

	cat := adapter.NewPulsarCatalog(m.Path(db))

	filled, err := wf.LookupPositions(ctx, cat, obs)
	if err != nil {
		t.Fatalf("LookupPositions failed: %v", err)
	}

	if filled != 2 {
		t.Errorf("filled = %d, want 2", filled)
	}

	if obs.Sources[0].Coord1 != "17:13:49.5335615" || obs.Sources[0].System != m.CoordJ2000 {
		t.Errorf("J1713+0747 not filled: %+v", obs.Sources[0])
	}

	if obs.Sources[1].Coord2 != "+22:00:52.06" {
		t.Errorf("B0531+21 not filled via its B name: %+v", obs.Sources[1])
	}

	if obs.Sources[2].Coord1 != "" {
		t.Error("unknown source gained coordinates")
	}

	if obs.Sources[3].Coord1 != "19:09:47.43" {
		t.Error("already-positioned source was touched")
	}
}

func TestWorkflowRegeneratePreservesEdits(t *testing.T) {
	ctx := context.Background()
	wf := newTestWorkflow()

	obs := m.NewObservationModel()
	obs.Sources = []m.Source{foldSource("J1713+0747")}

	if err := wf.Regenerate(ctx, obs); err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}

	labels := obs.BlockLabels()
	if len(labels) != 1 || labels[0] != "L-band Pulsars" {
		t.Fatalf("labels = %v", labels)
	}

	if err := obs.EditBlock("L-band Pulsars", "# custom\n"); err != nil {
		t.Fatalf("EditBlock failed: %v", err)
	}

	if err := wf.Regenerate(ctx, obs); err != nil {
		t.Fatalf("second Regenerate failed: %v", err)
	}

	blk, _ := obs.Block("L-band Pulsars")

	if blk.Text != "# custom\n" || !blk.Edited {
		t.Error("regenerate clobbered the edited text")
	}

	if err := obs.ResetBlock("L-band Pulsars"); err != nil {
		t.Fatalf("ResetBlock failed: %v", err)
	}

	blk, _ = obs.Block("L-band Pulsars")

	if blk.Edited || blk.Text != blk.Generated {
		t.Error("reset did not restore the generated text")
	}
}

func TestWorkflowWriteBlocks(t *testing.T) {
	ctx := context.Background()
	wf := newTestWorkflow()

	obs := m.NewObservationModel()
	obs.IncludeFluxCal = true
	obs.FluxCalSource = "3C286"
	obs.Sources = []m.Source{foldSource("J1713+0747")}

	dir := m.Path(filepath.Join(t.TempDir(), "blocks"))

	// No blocks yet: WriteBlocks regenerates first.
	paths, err := wf.WriteBlocks(ctx, obs, dir)
	if err != nil {
		t.Fatalf("WriteBlocks failed: %v", err)
	}

	want := []string{"L_band_Pulsars.py", "L_band_Flux_Cal.py"}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths, want %d", len(paths), len(want))
	}

	for i, name := range want {
		if filepath.Base(string(paths[i])) != name {
			t.Errorf("path %d = %q, want base %q", i, paths[i], name)
		}
	}

	data, err := os.ReadFile(string(paths[0]))
	if err != nil {
		t.Fatalf("read block: %v", err)
	}

	blk, _ := obs.Block("L-band Pulsars")
	if string(data) != blk.Generated {
		t.Error("written block does not match the generated text")
	}

	// Edits win over generated text on the next write.
	if err := obs.EditBlock("L-band Pulsars", "# tweaked\n"); err != nil {
		t.Fatalf("EditBlock failed: %v", err)
	}

	if _, err := wf.WriteBlocks(ctx, obs, dir); err != nil {
		t.Fatalf("second WriteBlocks failed: %v", err)
	}

	data, err = os.ReadFile(string(paths[0]))
	if err != nil {
		t.Fatalf("reread block: %v", err)
	}

	if string(data) != "# tweaked\n" {
		t.Errorf("edited text not written, got %q", string(data))
	}
}

func TestWorkflowValidate(t *testing.T) {
	wf := newTestWorkflow()

	obs := m.NewObservationModel()

	src := foldSource("J1713+0747")
	src.ScanLengthSec = nil
	obs.Sources = []m.Source{src}

	if err := wf.Validate(obs); err == nil {
		t.Fatal("expected a validation error for the missing scan length")
	}

	obs.Sources[0].ScanLengthSec = floatPtr(1200)

	if err := wf.Validate(obs); err != nil {
		t.Fatalf("Validate failed on a complete model: %v", err)
	}
}
