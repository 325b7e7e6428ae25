package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// wizardPage identifies one step of the wizard.
type wizardPage int

const (
	pageSources wizardPage = iota
	pageFreqMode
	pageFluxCal
	pageParams
	pagePreview
	pageSave
)

var pageNames = []string{
	"Sources",
	"Band & Mode",
	"Flux Cal",
	"Backend",
	"Preview",
	"Save",
}

func (p wizardPage) String() string {
	if int(p) < 0 || int(p) >= len(pageNames) {
		return "?"
	}

	return pageNames[p]
}

// wizardModel is the top-level Bubble Tea model. It owns the observation
// being edited and dispatches to the model of the active page.
type wizardModel struct {
	ctx      context.Context
	workflow domain.Workflow
	obs      *m.ObservationModel
	session  m.Path

	page   wizardPage
	width  int
	height int
	status string

	sources  sourcesModel
	freqMode freqModeModel
	fluxCal  fluxCalModel
	params   paramsModel
	preview  previewModel
	save     saveModel
}

func newWizardModel(ctx context.Context, workflow domain.Workflow, obs *m.ObservationModel, session m.Path) wizardModel {
	return wizardModel{
		ctx:      ctx,
		workflow: workflow,
		obs:      obs,
		session:  session,
		sources:  newSourcesModel(obs),
		freqMode: newFreqModeModel(obs),
		fluxCal:  newFluxCalModel(obs),
		params:   newParamsModel(),
		preview:  newPreviewModel(),
		save:     newSaveModel(session),
	}
}

func (w wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (w wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.sources = w.sources.setSize(msg.Width, w.bodyHeight())
		w.freqMode = w.freqMode.setSize(msg.Width, w.bodyHeight())
		w.fluxCal = w.fluxCal.setSize(msg.Width, w.bodyHeight())
		w.preview = w.preview.setSize(msg.Width, w.bodyHeight())

		return w, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return w, tea.Quit
		case "tab":
			if !w.typing() {
				return w.movePage(1), nil
			}
		case "shift+tab":
			if !w.typing() {
				return w.movePage(-1), nil
			}
		case "esc", "q":
			if w.typing() || w.filtering() {
				break
			}

			return w, tea.Quit
		}
	}

	return w.updatePage(msg)
}

// typing reports whether the active page owns a focused text input, in
// which case navigation keys belong to the input.
func (w wizardModel) typing() bool {
	switch w.page {
	case pageSources:
		return w.sources.typing()
	case pageFluxCal:
		return w.fluxCal.typing()
	case pageSave:
		return w.save.typing()
	default:
		return false
	}
}

// filtering reports whether the sources list filter is capturing keys.
func (w wizardModel) filtering() bool {
	return w.page == pageSources && w.sources.list.FilterState() == list.Filtering
}

// movePage switches pages, running the leave and enter hooks that keep the
// model consistent: backend edits apply on leave, the preview recompiles on
// entry, and list pages rebuild their items from the model.
func (w wizardModel) movePage(delta int) wizardModel {
	next := w.page + wizardPage(delta)
	if next < pageSources {
		next = pageSources
	}

	if next > pageSave {
		next = pageSave
	}

	if next == w.page {
		return w
	}

	if w.page == pageParams && w.params.dirty {
		applied := w.params.apply(w.obs)
		w.status = fmt.Sprintf("backend parameters applied to %d source(s)", applied)
	}

	w.page = next

	switch next {
	case pageSources:
		w.sources = w.sources.refresh(w.obs)
	case pageFreqMode:
		w.freqMode = w.freqMode.refresh(w.obs)
	case pageFluxCal:
		w.fluxCal = w.fluxCal.refresh(w.obs)
	case pageParams:
		w.params = w.params.enter(w.obs)
	case pagePreview:
		w.preview = w.preview.enter(w.ctx, w.workflow, w.obs)
	case pageSave:
		w.save = w.save.enter(w.workflow, w.obs)
	}

	return w
}

func (w wizardModel) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch w.page {
	case pageSources:
		w.sources, cmd = w.sources.Update(msg, w.obs)
	case pageFreqMode:
		w.freqMode, cmd = w.freqMode.Update(msg, w.obs)
	case pageFluxCal:
		w.fluxCal, cmd = w.fluxCal.Update(msg, w.obs)
	case pageParams:
		w.params, cmd = w.params.Update(msg)
	case pagePreview:
		w.preview, cmd = w.preview.Update(msg, w.obs)
	case pageSave:
		w.save, cmd = w.save.Update(w.ctx, msg, w.workflow, w.obs)
	}

	return w, cmd
}

// bodyHeight is the space left for the page body after the title, the
// breadcrumb, the status line and the footer.
func (w wizardModel) bodyHeight() int {
	h := w.height - 7
	if h < 5 {
		h = 5
	}

	return h
}

func (w wizardModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	crumbStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Padding(0, 0, 1, 2)

	activeCrumb := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	title := titleStyle.Render("📡 Scheduling Block Builder")

	crumbs := make([]string, 0, len(pageNames))

	for i, name := range pageNames {
		entry := fmt.Sprintf("%d %s", i+1, name)
		if wizardPage(i) == w.page {
			entry = activeCrumb.Render(entry)
		}

		crumbs = append(crumbs, entry)
	}

	breadcrumb := crumbStyle.Render(strings.Join(crumbs, "  ·  "))

	var body, hint string

	switch w.page {
	case pageSources:
		body = w.sources.View(w.obs)
		hint = w.sources.hint()
	case pageFreqMode:
		body = w.freqMode.View(w.obs)
		hint = w.freqMode.hint()
	case pageFluxCal:
		body = w.fluxCal.View(w.obs)
		hint = w.fluxCal.hint()
	case pageParams:
		body = w.params.View()
		hint = w.params.hint()
	case pagePreview:
		body = w.preview.View()
		hint = w.preview.hint()
	case pageSave:
		body = w.save.View()
		hint = w.save.hint()
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("35")).
		PaddingLeft(2)

	status := ""
	if w.status != "" {
		status = statusStyle.Render(w.status)
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(w.width)

	footer := footerStyle.Render(hint + " • tab next • shift+tab back • ctrl+c quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		breadcrumb,
		body,
		status,
		footer,
	)
}

// truncateToWidth shortens text to fit in width terminal cells, ending with
// an ellipsis when anything was cut.
func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	const ellipsis = "…"

	if width <= 1 {
		return ellipsis
	}

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}
