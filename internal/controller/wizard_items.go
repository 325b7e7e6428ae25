package controller

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// wizardItem is a one-line list entry.
type wizardItem interface {
	list.Item
	label() string
}

// wizardDelegate renders wizard list entries with a selection marker.
type wizardDelegate struct{}

func (d wizardDelegate) Height() int  { return 1 }
func (d wizardDelegate) Spacing() int { return 0 }
func (d wizardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d wizardDelegate) Render(w io.Writer, model list.Model, index int, item list.Item) {
	entry, ok := item.(wizardItem)
	if !ok {
		return
	}

	text := truncateToWidth(entry.label(), model.Width()-4)

	if index == model.Index() {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

		_, _ = fmt.Fprint(w, style.Render("▸ "+text))

		return
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	_, _ = fmt.Fprint(w, style.Render("  "+text))
}

// sourceItem is a row of the source list.
type sourceItem struct {
	src  m.Source
	band string
	mode string
}

func (s sourceItem) FilterValue() string { return s.src.Name }

func (s sourceItem) label() string {
	coords := "position unknown"
	if s.src.Coord1 != "" && s.src.Coord2 != "" {
		coords = fmt.Sprintf("%s %s %s", s.src.System, s.src.Coord1, s.src.Coord2)
	}

	var notes []string

	if s.src.ScanLengthSec != nil {
		notes = append(notes, strconv.FormatFloat(*s.src.ScanLengthSec, 'g', -1, 64)+"s")
	}

	if s.src.Parfile != "" {
		notes = append(notes, "par")
	}

	if s.src.DM != nil {
		notes = append(notes, "DM")
	}

	if s.src.PolCal {
		notes = append(notes, "polcal")
	}

	suffix := ""
	if len(notes) > 0 {
		suffix = "  [" + strings.Join(notes, " ") + "]"
	}

	return fmt.Sprintf("%-16s %-38s %s %s%s", s.src.Name, coords, s.band, s.mode, suffix)
}

// bandItem is a row of the receiver band list.
type bandItem struct {
	band    m.FreqBand
	current bool
}

func (b bandItem) FilterValue() string { return b.band.Label }

func (b bandItem) label() string {
	marker := "  "
	if b.current {
		marker = "● "
	}

	return fmt.Sprintf("%s%-10s %-12s %4d MHz wide, %d window(s)",
		marker, b.band.Label, b.band.Receiver, b.band.Bandwidth, len(b.band.WindowCenters()))
}

// modeItem is a row of the observing mode list.
type modeItem struct {
	mode    m.ObsMode
	current bool
}

func (o modeItem) FilterValue() string { return o.mode.Label() }

func (o modeItem) label() string {
	marker := "  "
	if o.current {
		marker = "● "
	}

	return fmt.Sprintf("%s%-16s %s", marker, o.mode.Label(), modeBlurb(o.mode))
}

func modeBlurb(mode m.ObsMode) string {
	switch {
	case mode.Coherent() && mode.Fold():
		return "coherent dedispersion, folded profiles"
	case mode.Coherent():
		return "coherent dedispersion, search data"
	case mode.Fold():
		return "incoherent, folded profiles"
	default:
		return "incoherent, search data"
	}
}

// calItem is a row of the flux calibrator list. An empty name stands for
// picking the calibrator nearest the sources at compile time.
type calItem struct {
	name    string
	detail  string
	current bool
}

func (c calItem) FilterValue() string { return c.name }

func (c calItem) label() string {
	marker := "  "
	if c.current {
		marker = "● "
	}

	name := c.name
	if name == "" {
		name = "(nearest to sources)"
	}

	return fmt.Sprintf("%s%-22s %s", marker, name, c.detail)
}
