package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// fluxCalModel is the wizard page for flux calibration: whether to include
// it, which calibrator to point at, and how long each cal scan runs.
type fluxCalModel struct {
	list        list.Model
	scanInput   textinput.Model
	editingScan bool
	status      string
	width       int
}

func newFluxCalModel(obs *m.ObservationModel) fluxCalModel {
	cals := list.New([]list.Item{}, wizardDelegate{}, 80, 11)
	cals.SetShowTitle(false)
	cals.SetShowStatusBar(false)
	cals.SetShowHelp(false)
	cals.SetShowPagination(false)
	cals.SetShowFilter(false)
	cals.SetFilteringEnabled(false)

	scan := textinput.New()
	scan.Placeholder = "seconds"
	scan.CharLimit = 8
	scan.Width = 10

	f := fluxCalModel{list: cals, scanInput: scan, width: 80}

	return f.refresh(obs)
}

// refresh rebuilds the calibrator list. Each named entry shows its J2000
// position and the flux it should deliver at the current band center.
func (f fluxCalModel) refresh(obs *m.ObservationModel) fluxCalModel {
	var freqMHz float64
	if band, ok := domain.BandByLabel(obs.GlobalBand); ok {
		freqMHz = band.CenterFreq
	}

	items := make([]list.Item, 0, len(domain.FluxCalibrators)+1)

	items = append(items, calItem{
		name:    "",
		detail:  "picked from the mean source position",
		current: obs.FluxCalSource == "",
	})

	for _, cal := range domain.FluxCalibrators {
		detail := fmt.Sprintf("%s %s", domain.FormatRAHours(cal.RAHours), domain.FormatDecDeg(cal.DecDeg))
		if freqMHz > 0 {
			detail = fmt.Sprintf("%s  %.1f Jy @ %s MHz", detail, domain.FluxAt(cal, freqMHz), formatMHz(freqMHz))
		}

		items = append(items, calItem{
			name:    cal.Name,
			detail:  detail,
			current: cal.Name == obs.FluxCalSource,
		})
	}

	f.list.SetItems(items)

	return f
}

func (f fluxCalModel) setSize(width, height int) fluxCalModel {
	f.width = width

	listHeight := height - 4
	if listHeight < 4 {
		listHeight = 4
	}

	f.list.SetWidth(width - 4)
	f.list.SetHeight(listHeight)

	return f
}

func (f fluxCalModel) typing() bool {
	return f.editingScan
}

func (f fluxCalModel) Update(msg tea.Msg, obs *m.ObservationModel) (fluxCalModel, tea.Cmd) {
	if f.editingScan {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				value, err := strconv.ParseFloat(strings.TrimSpace(f.scanInput.Value()), 64)
				if err != nil || value <= 0 {
					f.status = "scan length must be a positive number of seconds"
					return f, nil
				}

				obs.FluxCalScanSec = value
				f.status = fmt.Sprintf("cal scans set to %s s", formatSeconds(value))
				f.editingScan = false
				f.scanInput.Blur()

				return f, nil

			case "esc":
				f.editingScan = false
				f.status = ""
				f.scanInput.Blur()

				return f, nil
			}
		}

		var cmd tea.Cmd
		f.scanInput, cmd = f.scanInput.Update(msg)

		return f, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "f":
			obs.IncludeFluxCal = !obs.IncludeFluxCal
			return f, nil

		case "e":
			f.editingScan = true
			f.status = ""
			f.scanInput.SetValue(formatSeconds(obs.FluxCalScanSec))

			return f, f.scanInput.Focus()

		case "enter":
			if item, ok := f.list.SelectedItem().(calItem); ok {
				obs.FluxCalSource = item.name
				obs.IncludeFluxCal = true
			}

			return f.refresh(obs), nil
		}
	}

	var cmd tea.Cmd
	f.list, cmd = f.list.Update(msg)

	return f, cmd
}

func (f fluxCalModel) View(obs *m.ObservationModel) string {
	headerStyle := lipgloss.NewStyle().PaddingLeft(2)

	scan := formatSeconds(obs.FluxCalScanSec)
	if f.editingScan {
		scan = f.scanInput.View()
	}

	header := headerStyle.Render(fmt.Sprintf("%s   cal scan: %s s",
		checkbox("include flux calibration", obs.IncludeFluxCal), scan))

	sections := []string{header, "", f.list.View()}

	if f.status != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			PaddingLeft(2)

		sections = append(sections, statusStyle.Render(f.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (f fluxCalModel) hint() string {
	if f.editingScan {
		return "enter apply • esc cancel"
	}

	return "enter select calibrator • f toggle • e scan length"
}
