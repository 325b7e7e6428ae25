package controller

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// freqModeModel is the wizard page for the receiver band, the observing
// mode and the session-wide toggles.
type freqModeModel struct {
	bands      list.Model
	modes      list.Model
	focusModes bool
	width      int
}

func newFreqModeModel(obs *m.ObservationModel) freqModeModel {
	bands := list.New([]list.Item{}, wizardDelegate{}, 60, 9)
	bands.SetShowTitle(false)
	bands.SetShowStatusBar(false)
	bands.SetShowHelp(false)
	bands.SetShowPagination(false)
	bands.SetShowFilter(false)
	bands.SetFilteringEnabled(false)

	modes := list.New([]list.Item{}, wizardDelegate{}, 60, 9)
	modes.SetShowTitle(false)
	modes.SetShowStatusBar(false)
	modes.SetShowHelp(false)
	modes.SetShowPagination(false)
	modes.SetShowFilter(false)
	modes.SetFilteringEnabled(false)

	f := freqModeModel{bands: bands, modes: modes, width: 120}

	return f.refresh(obs)
}

func (f freqModeModel) refresh(obs *m.ObservationModel) freqModeModel {
	bandItems := make([]list.Item, 0, len(domain.FreqBands))

	for _, band := range domain.FreqBands {
		bandItems = append(bandItems, bandItem{
			band:    band,
			current: band.Label == obs.GlobalBand,
		})
	}

	f.bands.SetItems(bandItems)

	modeItems := make([]list.Item, 0, len(m.ObsModes))

	for _, mode := range m.ObsModes {
		modeItems = append(modeItems, modeItem{
			mode:    mode,
			current: mode == obs.GlobalMode,
		})
	}

	f.modes.SetItems(modeItems)

	return f
}

func (f freqModeModel) setSize(width, height int) freqModeModel {
	f.width = width

	listHeight := height - 5
	if listHeight < 4 {
		listHeight = 4
	}

	half := width/2 - 4
	if half < 30 {
		half = 30
	}

	f.bands.SetWidth(half)
	f.bands.SetHeight(listHeight)
	f.modes.SetWidth(half)
	f.modes.SetHeight(listHeight)

	return f
}

func (f freqModeModel) Update(msg tea.Msg, obs *m.ObservationModel) (freqModeModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "left", "h":
			f.focusModes = false
			return f, nil

		case "right", "l":
			f.focusModes = true
			return f, nil

		case "enter":
			return f.applySelection(obs), nil

		case "p":
			obs.IncludePolCal = !obs.IncludePolCal
			return f, nil

		case "f":
			obs.IncludeFluxCal = !obs.IncludeFluxCal
			return f, nil

		case "o":
			obs.PerSourceConfig = !obs.PerSourceConfig
			return f, nil
		}
	}

	var cmd tea.Cmd

	if f.focusModes {
		f.modes, cmd = f.modes.Update(msg)
	} else {
		f.bands, cmd = f.bands.Update(msg)
	}

	return f, cmd
}

func (f freqModeModel) applySelection(obs *m.ObservationModel) freqModeModel {
	if f.focusModes {
		if item, ok := f.modes.SelectedItem().(modeItem); ok {
			obs.GlobalMode = item.mode
		}
	} else {
		if item, ok := f.bands.SelectedItem().(bandItem); ok {
			obs.GlobalBand = item.band.Label
		}
	}

	return f.refresh(obs)
}

func (f freqModeModel) View(obs *m.ObservationModel) string {
	focusedBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Margin(0, 1).
		Padding(0, 1)

	blurredBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Margin(0, 1).
		Padding(0, 1)

	boxTitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true)

	bandBody := lipgloss.JoinVertical(lipgloss.Left,
		boxTitle.Render("Receiver band"),
		f.bands.View(),
	)

	modeBody := lipgloss.JoinVertical(lipgloss.Left,
		boxTitle.Render("Observing mode"),
		f.modes.View(),
	)

	var boxes string
	if f.focusModes {
		boxes = lipgloss.JoinHorizontal(lipgloss.Top,
			blurredBox.Render(bandBody),
			focusedBox.Render(modeBody),
		)
	} else {
		boxes = lipgloss.JoinHorizontal(lipgloss.Top,
			focusedBox.Render(bandBody),
			blurredBox.Render(modeBody),
		)
	}

	toggleStyle := lipgloss.NewStyle().PaddingLeft(2)

	toggles := toggleStyle.Render(fmt.Sprintf("%s   %s   %s",
		checkbox("flux cal", obs.IncludeFluxCal),
		checkbox("pol cal all sources", obs.IncludePolCal),
		checkbox("per-source overrides", obs.PerSourceConfig),
	))

	return lipgloss.JoinVertical(lipgloss.Left, boxes, "", toggles)
}

func (f freqModeModel) hint() string {
	return "←/→ switch list • enter select • f flux cal • p pol cal • o overrides"
}

func checkbox(label string, on bool) string {
	if on {
		return "[x] " + label
	}

	return "[ ] " + label
}
