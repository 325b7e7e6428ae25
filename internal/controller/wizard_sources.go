package controller

import (
	"errors"
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

const addPlaceholder = "NAME [COORD1 COORD2 [j2000|b1950|galactic]]"

// sourceField is the per-source field being edited inline.
type sourceField int

const (
	fieldNone sourceField = iota
	fieldScan
	fieldParfile
	fieldDM
)

// sourcesModel is the first wizard page: the list of sources to observe.
// Sources are added by hand here; bulk imports go through the import
// command before the wizard starts. The scan length, ephemeris and DM of
// the selected source are edited inline.
type sourcesModel struct {
	list    list.Model
	input   textinput.Model
	adding  bool
	editing sourceField
	status  string
	width   int
}

func newSourcesModel(obs *m.ObservationModel) sourcesModel {
	src := list.New([]list.Item{}, wizardDelegate{}, 80, 14)
	src.SetShowTitle(false)
	src.SetShowStatusBar(false)
	src.SetShowHelp(false)
	src.SetShowPagination(false)
	src.SetShowFilter(true)
	src.FilterInput.Placeholder = "Filter by name…"

	input := textinput.New()
	input.Placeholder = addPlaceholder
	input.CharLimit = 128
	input.Width = 52

	s := sourcesModel{list: src, input: input, width: 80}

	return s.refresh(obs)
}

func (s sourcesModel) refresh(obs *m.ObservationModel) sourcesModel {
	items := make([]list.Item, 0, len(obs.Sources))

	for _, src := range obs.Sources {
		items = append(items, sourceItem{
			src:  src,
			band: obs.EffectiveBand(src),
			mode: obs.EffectiveMode(src).Label(),
		})
	}

	s.list.SetItems(items)

	return s
}

func (s sourcesModel) setSize(width, height int) sourcesModel {
	s.width = width

	listHeight := height - 4
	if listHeight < 4 {
		listHeight = 4
	}

	s.list.SetWidth(width - 4)
	s.list.SetHeight(listHeight)

	return s
}

func (s sourcesModel) typing() bool {
	return s.adding || s.editing != fieldNone
}

func (s sourcesModel) Update(msg tea.Msg, obs *m.ObservationModel) (sourcesModel, tea.Cmd) {
	if s.typing() {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				if s.adding {
					return s.finishAdd(obs), nil
				}

				return s.finishEdit(obs), nil

			case "esc":
				s = s.closeInput()
				s.status = ""

				return s, nil
			}
		}

		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)

		return s, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok && s.list.FilterState() != list.Filtering {
		switch key.String() {
		case "a":
			s.adding = true
			s.status = ""
			s.input.Placeholder = addPlaceholder

			return s, s.input.Focus()

		case "d":
			return s.deleteSelected(obs), nil

		case "p":
			return s.togglePolCal(obs), nil

		case "s":
			return s.startEdit(fieldScan)

		case "e":
			return s.startEdit(fieldParfile)

		case "m":
			return s.startEdit(fieldDM)
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)

	return s, cmd
}

func (s sourcesModel) closeInput() sourcesModel {
	s.adding = false
	s.editing = fieldNone
	s.input.Reset()
	s.input.Blur()
	s.input.Placeholder = addPlaceholder

	return s
}

func (s sourcesModel) finishAdd(obs *m.ObservationModel) sourcesModel {
	if err := s.addSource(obs); err != nil {
		s.status = err.Error()
		return s
	}

	s.status = fmt.Sprintf("added %s", strings.Fields(s.input.Value())[0])

	return s.closeInput().refresh(obs)
}

// addSource parses the quick-add line. A bare name is allowed; its position
// can be filled from the pulsar catalog later.
func (s sourcesModel) addSource(obs *m.ObservationModel) error {
	fields := strings.Fields(strings.TrimSpace(s.input.Value()))
	if len(fields) == 0 {
		return errors.New("enter a source name")
	}

	name := fields[0]
	if err := domain.ValidateSourceName(name); err != nil {
		return err
	}

	for _, existing := range obs.Sources {
		if existing.Name == name {
			return fmt.Errorf("%s is already in the list", name)
		}
	}

	src := m.Source{Name: name, System: m.CoordJ2000}

	switch len(fields) {
	case 1:
		// position left empty, to be resolved against the pulsar catalog

	case 3, 4:
		src.Coord1 = fields[1]
		src.Coord2 = fields[2]

		if len(fields) == 4 {
			switch strings.ToLower(fields[3]) {
			case "j2000":
			case "b1950":
				src.System = m.CoordB1950
			case "galactic", "gal":
				src.System = m.CoordGalactic
			default:
				return fmt.Errorf("unknown coordinate system %q", fields[3])
			}
		}

		if err := domain.ValidateSource(src); err != nil {
			return err
		}

	default:
		return errors.New("expected NAME or NAME COORD1 COORD2 [system]")
	}

	obs.Sources = append(obs.Sources, src)

	return nil
}

// startEdit opens the inline input for one field of the selected source.
func (s sourcesModel) startEdit(field sourceField) (sourcesModel, tea.Cmd) {
	item, ok := s.list.SelectedItem().(sourceItem)
	if !ok {
		return s, nil
	}

	s.editing = field
	s.status = ""
	s.input.Reset()

	switch field {
	case fieldScan:
		s.input.Placeholder = "scan length in seconds (empty for default)"

		if item.src.ScanLengthSec != nil {
			s.input.SetValue(strconv.FormatFloat(*item.src.ScanLengthSec, 'g', -1, 64))
		}

	case fieldParfile:
		s.input.Placeholder = "path to the ephemeris (.par) file"
		s.input.SetValue(item.src.Parfile)

	case fieldDM:
		s.input.Placeholder = "dispersion measure in pc/cm^3 (empty to clear)"

		if item.src.DM != nil {
			s.input.SetValue(strconv.FormatFloat(*item.src.DM, 'g', -1, 64))
		}

	case fieldNone:
	}

	return s, s.input.Focus()
}

func (s sourcesModel) finishEdit(obs *m.ObservationModel) sourcesModel {
	item, ok := s.list.SelectedItem().(sourceItem)
	if !ok {
		return s.closeInput()
	}

	value := strings.TrimSpace(s.input.Value())

	var number *float64

	switch s.editing {
	case fieldScan, fieldDM:
		if value != "" {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil || parsed <= 0 {
				s.status = "enter a positive number, or leave empty to clear"
				return s
			}

			number = &parsed
		}

	case fieldParfile, fieldNone:
	}

	for i := range obs.Sources {
		if obs.Sources[i].Name != item.src.Name {
			continue
		}

		switch s.editing {
		case fieldScan:
			obs.Sources[i].ScanLengthSec = number
			s.status = fmt.Sprintf("%s scan length updated", item.src.Name)
		case fieldParfile:
			obs.Sources[i].Parfile = value
			s.status = fmt.Sprintf("%s ephemeris set", item.src.Name)
		case fieldDM:
			obs.Sources[i].DM = number
			s.status = fmt.Sprintf("%s DM updated", item.src.Name)
		case fieldNone:
		}

		break
	}

	return s.closeInput().refresh(obs)
}

func (s sourcesModel) deleteSelected(obs *m.ObservationModel) sourcesModel {
	item, ok := s.list.SelectedItem().(sourceItem)
	if !ok {
		return s
	}

	for i, src := range obs.Sources {
		if src.Name == item.src.Name {
			obs.Sources = append(obs.Sources[:i], obs.Sources[i+1:]...)
			s.status = fmt.Sprintf("removed %s", src.Name)

			break
		}
	}

	return s.refresh(obs)
}

func (s sourcesModel) togglePolCal(obs *m.ObservationModel) sourcesModel {
	item, ok := s.list.SelectedItem().(sourceItem)
	if !ok {
		return s
	}

	for i := range obs.Sources {
		if obs.Sources[i].Name == item.src.Name {
			obs.Sources[i].PolCal = !obs.Sources[i].PolCal

			if obs.Sources[i].PolCal {
				s.status = fmt.Sprintf("%s gets a polarization cal scan", item.src.Name)
			} else {
				s.status = fmt.Sprintf("%s polarization cal off", item.src.Name)
			}

			break
		}
	}

	return s.refresh(obs)
}

func (s sourcesModel) View(obs *m.ObservationModel) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		PaddingLeft(2)

	header := headerStyle.Render(fmt.Sprintf("%d source(s)", len(obs.Sources)))

	sections := []string{header, s.list.View()}

	if s.typing() {
		prompt := "add source: "

		switch s.editing {
		case fieldScan:
			prompt = "scan length: "
		case fieldParfile:
			prompt = "ephemeris: "
		case fieldDM:
			prompt = "DM: "
		case fieldNone:
		}

		inputStyle := lipgloss.NewStyle().PaddingLeft(2)
		sections = append(sections, inputStyle.Render(prompt+s.input.View()))
	}

	if s.status != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			PaddingLeft(2)

		sections = append(sections, statusStyle.Render(s.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s sourcesModel) hint() string {
	if s.typing() {
		return "enter apply • esc cancel"
	}

	return "a add • d delete • s scan • e parfile • m dm • p polcal • / filter"
}
