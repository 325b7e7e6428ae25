package controller

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// paramRow identifies one editable line of the backend page.
type paramRow int

const (
	rowNumChan paramRow = iota
	rowTint
	rowPoln
	rowFoldBins
	rowFoldDump
)

var (
	foldBinChoices  = []int{64, 128, 256, 512, 1024, 2048, 4096}
	foldDumpChoices = []float64{1, 2, 5, 10, 20, 30, 60}
)

// paramsModel is the wizard page for VEGAS backend parameters. It edits a
// working copy resolved for the global band and mode; the copy is applied
// to every matching source when the observer leaves the page.
type paramsModel struct {
	band    m.FreqBand
	mode    m.ObsMode
	working m.BackendParams
	cursor  int
	dirty   bool
	missing bool
	status  string
}

func newParamsModel() paramsModel {
	return paramsModel{missing: true}
}

// enter resolves the working copy for the current globals. A source that
// already carries fresh parameters for this band and mode seeds the copy,
// so the page shows what would actually be compiled.
func (p paramsModel) enter(obs *m.ObservationModel) paramsModel {
	band, ok := domain.BandByLabel(obs.GlobalBand)
	if !ok {
		p.missing = true
		return p
	}

	p.missing = false
	p.band = band
	p.mode = obs.GlobalMode
	p.cursor = 0
	p.dirty = false
	p.status = ""
	p.working = domain.ComputeDefaults(band, obs.GlobalMode)

	for _, src := range obs.Sources {
		params := src.Params
		if params == nil || obs.EffectiveBand(src) != band.Label || obs.EffectiveMode(src) != obs.GlobalMode {
			continue
		}

		if !params.Stale(band.Label, obs.GlobalMode) {
			p.working = *params.Clone()
			break
		}
	}

	return p
}

// apply copies the working parameters onto every source observed with this
// band and mode, and returns how many sources changed.
func (p paramsModel) apply(obs *m.ObservationModel) int {
	applied := 0

	for i := range obs.Sources {
		src := obs.Sources[i]
		if obs.EffectiveBand(src) != p.band.Label || obs.EffectiveMode(src) != p.mode {
			continue
		}

		clone := p.working.Clone()
		clone.MarkProvenance(p.band.Label, p.mode)
		obs.Sources[i].Params = clone
		applied++
	}

	return applied
}

func (p paramsModel) rows() []paramRow {
	rows := []paramRow{rowNumChan, rowTint, rowPoln}

	if p.mode.Fold() {
		rows = append(rows, rowFoldBins, rowFoldDump)
	}

	return rows
}

func (p paramsModel) Update(msg tea.Msg) (paramsModel, tea.Cmd) {
	if p.missing {
		return p, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	rows := p.rows()

	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}

	case "down", "j":
		if p.cursor < len(rows)-1 {
			p.cursor++
		}

	case "left", "h":
		p = p.cycle(rows[p.cursor], -1)

	case "right", "l":
		p = p.cycle(rows[p.cursor], 1)

	case "r":
		p.working = domain.ComputeDefaults(p.band, p.mode)
		p.dirty = true
		p.status = "reset to recommended defaults"
	}

	return p, nil
}

// cycle steps the row's value through its valid set. Channel and tint edits
// go through the resolver so the scale and tint stay consistent with the
// hardware tables.
func (p paramsModel) cycle(row paramRow, dir int) paramsModel {
	p.status = ""

	switch row {
	case rowNumChan:
		valid := domain.GetValidNumchanValues(p.band.Bandwidth, p.mode.Coherent())
		idx := indexOfInt(valid, p.working.NumChan) + dir

		if idx < 0 || idx >= len(valid) {
			return p
		}

		if err := domain.SetNumChan(&p.working, p.band.Bandwidth, p.mode.Coherent(), valid[idx]); err != nil {
			p.status = err.Error()
			return p
		}

	case rowTint:
		choices := domain.TintChoices(p.band.Bandwidth, p.working.NumChan, p.mode.Coherent())
		idx := indexOfFloat(choices, p.working.TintSec) + dir

		if idx < 0 || idx >= len(choices) {
			return p
		}

		if err := domain.SetTint(&p.working, p.band.Bandwidth, p.mode.Coherent(), choices[idx]); err != nil {
			p.status = err.Error()
			return p
		}

	case rowPoln:
		if p.working.Poln == m.PolnFullStokes {
			p.working.Poln = m.PolnTotalIntensity
		} else {
			p.working.Poln = m.PolnFullStokes
		}

	case rowFoldBins:
		idx := indexOfInt(foldBinChoices, p.working.FoldBins) + dir
		if idx < 0 || idx >= len(foldBinChoices) {
			return p
		}

		p.working.FoldBins = foldBinChoices[idx]

	case rowFoldDump:
		idx := indexOfFloat(foldDumpChoices, p.working.FoldDumpSec) + dir
		if idx < 0 || idx >= len(foldDumpChoices) {
			return p
		}

		p.working.FoldDumpSec = foldDumpChoices[idx]
	}

	p.dirty = true

	return p
}

func (p paramsModel) View() string {
	if p.missing {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(1, 2).
			Render("pick a receiver band on the Band & Mode page first")
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		PaddingLeft(2)

	rowStyle := lipgloss.NewStyle().PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		PaddingLeft(2)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		PaddingLeft(2)

	lines := []string{
		headerStyle.Render(fmt.Sprintf("%s, %s", p.band.Describe(), p.mode.Label())),
		"",
	}

	for i, row := range p.rows() {
		label, value := p.rowText(row)

		text := fmt.Sprintf("  %-22s    %s", label, value)
		if i == p.cursor {
			text = fmt.Sprintf("▸ %-22s  ◂ %s ▸", label, value)
			lines = append(lines, selectedStyle.Render(text))

			continue
		}

		lines = append(lines, rowStyle.Render(text))
	}

	centers := make([]string, 0, len(p.working.CenterFreqs))
	for _, cf := range p.working.CenterFreqs {
		centers = append(centers, formatMHz(cf))
	}

	rate := 0.0
	if p.working.TintSec > 0 {
		rate = float64(p.working.Poln.NumPol()) * float64(p.working.NumChan) / p.working.TintSec / 1e6
	}

	lines = append(lines,
		"",
		dimStyle.Render(fmt.Sprintf("  %-22s    %d", "scale (derived)", p.working.Scale)),
		dimStyle.Render(fmt.Sprintf("  %-22s    %d bits", "output", p.working.OutBits)),
		dimStyle.Render(fmt.Sprintf("  %-22s    %s MHz", "window centers", strings.Join(centers, ", "))),
		dimStyle.Render(fmt.Sprintf("  %-22s    %.1f MB/s", "data rate", rate)),
	)

	for _, warning := range domain.RateWarnings(&p.working, p.band.Bandwidth, p.mode.Coherent()) {
		warnStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			PaddingLeft(2)

		lines = append(lines, warnStyle.Render("⚠ "+warning))
	}

	if p.status != "" {
		lines = append(lines, "", rowStyle.Render(p.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (p paramsModel) rowText(row paramRow) (label, value string) {
	switch row {
	case rowNumChan:
		return "channels", strconv.Itoa(p.working.NumChan)
	case rowTint:
		return "integration time", formatSeconds(p.working.TintSec) + " s"
	case rowPoln:
		return "polarization", p.working.Poln.Display()
	case rowFoldBins:
		return "fold bins", strconv.Itoa(p.working.FoldBins)
	case rowFoldDump:
		return "fold dump time", formatSeconds(p.working.FoldDumpSec) + " s"
	}

	return "", ""
}

func (p paramsModel) hint() string {
	return "↑/↓ row • ←/→ change • r reset"
}

// indexOfInt returns the position of the closest value, so cycling works
// even when the current value is not in the list.
func indexOfInt(values []int, v int) int {
	best := 0
	for i, candidate := range values {
		if abs(candidate-v) < abs(values[best]-v) {
			best = i
		}
	}

	return best
}

func indexOfFloat(values []float64, v float64) int {
	best := 0
	for i, candidate := range values {
		if math.Abs(candidate-v) < math.Abs(values[best]-v) {
			best = i
		}
	}

	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
