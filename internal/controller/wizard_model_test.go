package controller

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

func newTestWizard() wizardModel {
	scan := 1200.0

	obs := m.NewObservationModel()
	obs.Sources = append(obs.Sources, m.Source{
		Name:          "J1713+0747",
		System:        m.CoordJ2000,
		Coord1:        "17:13:49.53",
		Coord2:        "+07:47:37.5",
		ScanLengthSec: &scan,
		Parfile:       "J1713+0747.par",
	})

	w := newWizardModel(context.Background(), newTestWorkflow(), obs, "session.yaml")

	model, _ := w.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	return model.(wizardModel)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWizardPageNavigation(t *testing.T) {
	w := newTestWizard()

	model, _ := w.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	w = model.(wizardModel)

	if w.page != pageSources {
		t.Fatalf("shift+tab at the first page moved to %v", w.page)
	}

	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyTab})
	w = model.(wizardModel)

	if w.page != pageFreqMode {
		t.Fatalf("tab moved to %v, want Band & Mode", w.page)
	}

	view := w.View()

	if !strings.Contains(view, "Scheduling Block Builder") {
		t.Fatalf("View missing title\n%s", view)
	}

	if !strings.Contains(view, "Band & Mode") {
		t.Fatalf("View missing breadcrumb\n%s", view)
	}

	if !strings.Contains(view, "Receiver band") {
		t.Fatalf("View missing band box\n%s", view)
	}
}

func TestWizardQuitKeys(t *testing.T) {
	w := newTestWizard()

	_, cmd := w.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("q did not quit")
	}

	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q produced %T, want tea.QuitMsg", cmd())
	}

	_, cmd = w.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c did not quit")
	}
}

func TestWizardAddSource(t *testing.T) {
	w := newTestWizard()

	model, _ := w.Update(keyRunes("a"))
	w = model.(wizardModel)

	if !w.sources.adding {
		t.Fatalf("a did not open the add input")
	}

	// q must type into the input, not quit
	_, cmd := w.Update(keyRunes("q"))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatalf("q quit the wizard while typing")
		}
	}

	model, _ = w.Update(keyRunes("J1909-3744 19:09:47.43 -37:44:14.5"))
	w = model.(wizardModel)

	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if len(w.obs.Sources) != 2 {
		t.Fatalf("source count = %d, want 2 (status %q)", len(w.obs.Sources), w.sources.status)
	}

	added := w.obs.Sources[1]
	if added.Name != "J1909-3744" || added.System != m.CoordJ2000 || added.Coord1 != "19:09:47.43" {
		t.Fatalf("added source wrong: %+v", added)
	}

	if w.sources.adding {
		t.Fatalf("add input still open after enter")
	}

	if !strings.Contains(w.sources.status, "added J1909-3744") {
		t.Fatalf("status = %q", w.sources.status)
	}
}

func TestWizardAddSourceVariants(t *testing.T) {
	w := newTestWizard()

	// bare name, position to be looked up later
	model, _ := w.Update(keyRunes("a"))
	w = model.(wizardModel)
	model, _ = w.Update(keyRunes("B1937+21"))
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if len(w.obs.Sources) != 2 || w.obs.Sources[1].Coord1 != "" {
		t.Fatalf("bare-name add failed: %+v (status %q)", w.obs.Sources, w.sources.status)
	}

	// galactic coordinates with an explicit system
	model, _ = w.Update(keyRunes("a"))
	w = model.(wizardModel)
	model, _ = w.Update(keyRunes("G21.5-0.9 21.5 -0.9 galactic"))
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if len(w.obs.Sources) != 3 || w.obs.Sources[2].System != m.CoordGalactic {
		t.Fatalf("galactic add failed: %+v (status %q)", w.obs.Sources, w.sources.status)
	}

	// duplicates are rejected and the input stays open
	model, _ = w.Update(keyRunes("a"))
	w = model.(wizardModel)
	model, _ = w.Update(keyRunes("J1713+0747"))
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if len(w.obs.Sources) != 3 {
		t.Fatalf("duplicate was added")
	}

	if !w.sources.adding || !strings.Contains(w.sources.status, "already") {
		t.Fatalf("duplicate add: adding=%v status=%q", w.sources.adding, w.sources.status)
	}
}

func TestWizardEditSourceFields(t *testing.T) {
	w := newTestWizard()

	// scan length
	model, _ := w.Update(keyRunes("s"))
	w = model.(wizardModel)

	if w.sources.editing != fieldScan {
		t.Fatalf("s did not open the scan input")
	}

	w.sources.input.SetValue("600")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.Sources[0].ScanLengthSec == nil || *w.obs.Sources[0].ScanLengthSec != 600 {
		t.Fatalf("scan length not applied: %+v (status %q)", w.obs.Sources[0].ScanLengthSec, w.sources.status)
	}

	// rejecting a non-positive value keeps the input open
	model, _ = w.Update(keyRunes("s"))
	w = model.(wizardModel)
	w.sources.input.SetValue("-1")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.sources.editing != fieldScan || !strings.Contains(w.sources.status, "positive") {
		t.Fatalf("bad scan value: editing=%v status=%q", w.sources.editing, w.sources.status)
	}

	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEsc})
	w = model.(wizardModel)

	if w.sources.editing != fieldNone {
		t.Fatalf("esc did not close the input")
	}

	// parfile
	model, _ = w.Update(keyRunes("e"))
	w = model.(wizardModel)
	w.sources.input.SetValue("ephem/J1713+0747.par")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.Sources[0].Parfile != "ephem/J1713+0747.par" {
		t.Fatalf("parfile not applied: %q", w.obs.Sources[0].Parfile)
	}

	// dispersion measure
	model, _ = w.Update(keyRunes("m"))
	w = model.(wizardModel)
	w.sources.input.SetValue("15.99")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.Sources[0].DM == nil || *w.obs.Sources[0].DM != 15.99 {
		t.Fatalf("DM not applied: %+v", w.obs.Sources[0].DM)
	}

	// empty DM clears the value
	model, _ = w.Update(keyRunes("m"))
	w = model.(wizardModel)
	w.sources.input.SetValue("")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.Sources[0].DM != nil {
		t.Fatalf("empty DM did not clear the value")
	}
}

func TestWizardDeleteAndPolCal(t *testing.T) {
	w := newTestWizard()

	model, _ := w.Update(keyRunes("p"))
	w = model.(wizardModel)

	if !w.obs.Sources[0].PolCal {
		t.Fatalf("p did not toggle the source polarization cal")
	}

	model, _ = w.Update(keyRunes("d"))
	w = model.(wizardModel)

	if len(w.obs.Sources) != 0 {
		t.Fatalf("d did not delete the selected source")
	}
}

func TestWizardFreqModeSelection(t *testing.T) {
	w := newTestWizard()
	w = w.movePage(1)

	if w.page != pageFreqMode {
		t.Fatalf("page = %v, want Band & Mode", w.page)
	}

	// bands list is focused first; pick 820 MHz
	model, _ := w.Update(tea.KeyMsg{Type: tea.KeyDown})
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.GlobalBand != "820 MHz" {
		t.Fatalf("GlobalBand = %q, want 820 MHz", w.obs.GlobalBand)
	}

	// switch focus to the mode list and pick coherent search
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyRight})
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyDown})
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.GlobalMode != m.ModeCoherentSearch {
		t.Fatalf("GlobalMode = %q, want coherent search", w.obs.GlobalMode)
	}

	model, _ = w.Update(keyRunes("f"))
	w = model.(wizardModel)

	if !w.obs.IncludeFluxCal {
		t.Fatalf("f did not toggle flux cal")
	}

	model, _ = w.Update(keyRunes("o"))
	w = model.(wizardModel)

	if !w.obs.PerSourceConfig {
		t.Fatalf("o did not toggle per-source overrides")
	}
}

func TestWizardFluxCalPage(t *testing.T) {
	w := newTestWizard()
	w = w.movePage(1)
	w = w.movePage(1)

	if w.page != pageFluxCal {
		t.Fatalf("page = %v, want Flux Cal", w.page)
	}

	// first entry is "nearest"; the one below is 3C48
	model, _ := w.Update(tea.KeyMsg{Type: tea.KeyDown})
	w = model.(wizardModel)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.FluxCalSource != "3C48" || !w.obs.IncludeFluxCal {
		t.Fatalf("calibrator selection: source=%q include=%v", w.obs.FluxCalSource, w.obs.IncludeFluxCal)
	}

	model, _ = w.Update(keyRunes("e"))
	w = model.(wizardModel)

	if !w.fluxCal.editingScan {
		t.Fatalf("e did not open the scan input")
	}

	w.fluxCal.scanInput.SetValue("60")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.obs.FluxCalScanSec != 60 {
		t.Fatalf("FluxCalScanSec = %v, want 60", w.obs.FluxCalScanSec)
	}

	model, _ = w.Update(keyRunes("e"))
	w = model.(wizardModel)
	w.fluxCal.scanInput.SetValue("-5")
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if !strings.Contains(w.fluxCal.status, "positive") || w.obs.FluxCalScanSec != 60 {
		t.Fatalf("bad scan value accepted: status=%q scan=%v", w.fluxCal.status, w.obs.FluxCalScanSec)
	}
}

func TestWizardParamsFlow(t *testing.T) {
	w := newTestWizard()

	for w.page != pageParams {
		w = w.movePage(1)
	}

	if w.params.missing {
		t.Fatalf("params page missing its band")
	}

	if w.params.working.NumChan != 512 {
		t.Fatalf("working NumChan = %d, want the 512 default", w.params.working.NumChan)
	}

	valid := domain.GetValidNumchanValues(800, true)
	want := valid[indexOfInt(valid, 512)+1]

	model, _ := w.Update(tea.KeyMsg{Type: tea.KeyRight})
	w = model.(wizardModel)

	if !w.params.dirty || w.params.working.NumChan != want {
		t.Fatalf("right step: dirty=%v NumChan=%d want %d", w.params.dirty, w.params.working.NumChan, want)
	}

	wantScale := domain.GetRecommendedScale(800, want, true)
	if w.params.working.Scale != wantScale {
		t.Fatalf("scale not rederived: %d want %d", w.params.working.Scale, wantScale)
	}

	// leaving the page applies the working copy to matching sources
	w = w.movePage(1)

	params := w.obs.Sources[0].Params
	if params == nil || params.NumChan != want {
		t.Fatalf("params not applied on leave: %+v", params)
	}

	if !strings.Contains(w.status, "applied to 1 source") {
		t.Fatalf("status = %q", w.status)
	}
}

func TestWizardParamsRows(t *testing.T) {
	obs := m.NewObservationModel()

	p := newParamsModel().enter(obs)
	if len(p.rows()) != 5 {
		t.Fatalf("fold mode rows = %d, want 5", len(p.rows()))
	}

	obs.GlobalMode = m.ModeSearch
	p = newParamsModel().enter(obs)

	if len(p.rows()) != 3 {
		t.Fatalf("search mode rows = %d, want 3", len(p.rows()))
	}

	if p.working.Poln != m.PolnTotalIntensity {
		t.Fatalf("search default poln = %q, want total intensity", p.working.Poln)
	}

	p = p.cycle(rowPoln, 1)
	if p.working.Poln != m.PolnFullStokes {
		t.Fatalf("poln toggle = %q", p.working.Poln)
	}

	p = p.cycle(rowPoln, 1)
	if p.working.Poln != m.PolnTotalIntensity {
		t.Fatalf("poln toggle back = %q", p.working.Poln)
	}

	view := p.View()
	if !strings.Contains(view, "channels") || !strings.Contains(view, "data rate") {
		t.Fatalf("params view missing rows\n%s", view)
	}
}

func TestWizardPreview(t *testing.T) {
	w := newTestWizard()

	for w.page != pagePreview {
		w = w.movePage(1)
	}

	if w.preview.err != nil {
		t.Fatalf("preview compile error: %v", w.preview.err)
	}

	if len(w.preview.labels) != 1 || w.preview.labels[0] != "L-band Pulsars" {
		t.Fatalf("preview labels = %v", w.preview.labels)
	}

	if len(w.preview.lines) == 0 || w.preview.lines[0] != "# L-band pulsar observations" {
		t.Fatalf("preview lines wrong: %v", w.preview.lines[:1])
	}

	view := w.View()
	if !strings.Contains(view, "lines 1-") {
		t.Fatalf("preview view missing position line\n%s", view)
	}

	model, _ := w.Update(tea.KeyMsg{Type: tea.KeyDown})
	w = model.(wizardModel)

	if w.preview.offset != 1 {
		t.Fatalf("scroll offset = %d, want 1", w.preview.offset)
	}

	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	w = model.(wizardModel)

	if w.preview.offset > w.preview.maxOffset() {
		t.Fatalf("offset %d beyond max %d", w.preview.offset, w.preview.maxOffset())
	}
}

func TestWizardSaveFlow(t *testing.T) {
	w := newTestWizard()

	for w.page != pageSave {
		w = w.movePage(1)
	}

	if w.save.valErr != nil {
		t.Fatalf("validation failed on save page: %v", w.save.valErr)
	}

	dir := t.TempDir()
	sessionPath := filepath.Join(dir, "s.yaml")

	w.save.pathInput.SetValue(sessionPath)
	model, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.save.failed || !strings.Contains(w.save.status, "session saved") {
		t.Fatalf("save failed: %q", w.save.status)
	}

	if _, err := os.Stat(sessionPath); err != nil {
		t.Fatalf("session file missing: %v", err)
	}

	// switch to the block directory field and write the blocks
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyDown})
	w = model.(wizardModel)

	blockDir := filepath.Join(dir, "blocks")
	w.save.dirInput.SetValue(blockDir)
	model, _ = w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	w = model.(wizardModel)

	if w.save.failed || !strings.Contains(w.save.status, "block file(s) written") {
		t.Fatalf("block write failed: %q", w.save.status)
	}

	if _, err := os.Stat(filepath.Join(blockDir, "L_band_Pulsars.py")); err != nil {
		t.Fatalf("block file missing: %v", err)
	}
}

func TestWizardDelegateRender(t *testing.T) {
	delegate := wizardDelegate{}
	items := []list.Item{sourceItem{
		src:  m.Source{Name: "J1713+0747", System: m.CoordJ2000, Coord1: "17:13:49.53", Coord2: "+07:47:37.5"},
		band: "L-band",
		mode: "Coherent Fold",
	}}

	lst := list.New(items, delegate, 60, 5)

	var buf bytes.Buffer

	delegate.Render(&buf, lst, 0, items[0])
	if !strings.Contains(buf.String(), "J1713+0747") {
		t.Fatalf("render output missing name: %q", buf.String())
	}

	buf.Reset()
	delegate.Render(&buf, lst, 1, items[0])
	if buf.Len() == 0 {
		t.Fatalf("unselected render empty")
	}

	// Render with a foreign item type should not panic
	buf.Reset()
	delegate.Render(&buf, lst, 0, struct{ list.Item }{})

	if delegate.Height() != 1 || delegate.Spacing() != 0 {
		t.Fatalf("delegate geometry wrong")
	}
}

func TestTruncateToWidth(t *testing.T) {
	if got := truncateToWidth("hello", 0); got != "" {
		t.Fatalf("truncateToWidth width 0 = %q, want empty", got)
	}

	if got := truncateToWidth("hello", 10); got != "hello" {
		t.Fatalf("truncateToWidth no truncation = %q", got)
	}

	if got := truncateToWidth("hello", 1); got != "…" {
		t.Fatalf("truncateToWidth width 1 = %q, want ellipsis", got)
	}

	if got := truncateToWidth("hello", 2); got != "h…" {
		t.Fatalf("truncateToWidth width 2 = %q, want h…", got)
	}
}

func TestWizardPreviewShowsRateWarnings(t *testing.T) {
	w := newTestWizard()

	band, ok := domain.BandByLabel(w.obs.GlobalBand)
	if !ok {
		t.Fatalf("band %q not found", w.obs.GlobalBand)
	}

	params := domain.ComputeDefaults(band, w.obs.GlobalMode)
	params.NumChan = 2048
	params.TintSec = 1e-05
	params.MarkProvenance(w.obs.GlobalBand, w.obs.GlobalMode)
	w.obs.Sources[0].Params = &params

	for w.page != pagePreview {
		w = w.movePage(1)
	}

	view := w.View()
	if !strings.Contains(view, "⚠ J1713+0747:") {
		t.Fatalf("preview missing the rate warning:\n%s", view)
	}
}
