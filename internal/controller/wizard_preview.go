package controller

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// previewModel is the wizard page showing the compiled scheduling blocks.
// Entering the page recompiles, so the text always reflects the current
// sources and parameters.
type previewModel struct {
	labels   []string
	active   int
	offset   int
	lines    []string
	err      error
	warnings []string
	width    int
	height   int
}

func newPreviewModel() previewModel {
	return previewModel{width: 80, height: 20}
}

func (p previewModel) enter(ctx context.Context, workflow domain.Workflow, obs *m.ObservationModel) previewModel {
	p.err = workflow.Regenerate(ctx, obs)
	p.labels = obs.BlockLabels()
	p.warnings = domain.ModelWarnings(obs)
	p.offset = 0

	if p.active >= len(p.labels) {
		p.active = 0
	}

	return p.reload(obs)
}

func (p previewModel) reload(obs *m.ObservationModel) previewModel {
	p.lines = nil

	if len(p.labels) == 0 {
		return p
	}

	if block, ok := obs.Block(p.labels[p.active]); ok {
		text := block.Text
		if block.Edited {
			text = "# edited by hand, regeneration keeps this text\n" + text
		}

		p.lines = strings.Split(strings.TrimRight(text, "\n"), "\n")
	}

	return p
}

func (p previewModel) setSize(width, height int) previewModel {
	p.width = width
	p.height = height

	return p
}

// visibleLines is how many block lines fit under the tab bar.
func (p previewModel) visibleLines() int {
	visible := p.height - 6
	if visible < 3 {
		visible = 3
	}

	return visible
}

func (p previewModel) Update(msg tea.Msg, obs *m.ObservationModel) (previewModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key.String() {
	case "left", "h":
		if len(p.labels) > 0 {
			p.active = (p.active + len(p.labels) - 1) % len(p.labels)
			p.offset = 0

			return p.reload(obs), nil
		}

	case "right", "l":
		if len(p.labels) > 0 {
			p.active = (p.active + 1) % len(p.labels)
			p.offset = 0

			return p.reload(obs), nil
		}

	case "up", "k":
		if p.offset > 0 {
			p.offset--
		}

	case "down", "j":
		if p.offset < p.maxOffset() {
			p.offset++
		}

	case "pgup":
		p.offset -= p.visibleLines()
		if p.offset < 0 {
			p.offset = 0
		}

	case "pgdown":
		p.offset += p.visibleLines()
		if p.offset > p.maxOffset() {
			p.offset = p.maxOffset()
		}
	}

	return p, nil
}

func (p previewModel) maxOffset() int {
	max := len(p.lines) - p.visibleLines()
	if max < 0 {
		max = 0
	}

	return max
}

func (p previewModel) View() string {
	if p.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(1, 2).
			Render("cannot compile: " + p.err.Error())
	}

	if len(p.labels) == 0 {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render("nothing to preview, add sources first")
	}

	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeTab := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	tabs := make([]string, 0, len(p.labels))

	for i, label := range p.labels {
		if i == p.active {
			tabs = append(tabs, activeTab.Render("["+label+"]"))
			continue
		}

		tabs = append(tabs, tabStyle.Render(" "+label+" "))
	}

	tabBar := lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(tabs, " "))

	visible := p.visibleLines()

	end := p.offset + visible
	if end > len(p.lines) {
		end = len(p.lines)
	}

	window := strings.Join(p.lines[p.offset:end], "\n")

	boxWidth := p.width - 6
	if boxWidth < 40 {
		boxWidth = 40
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Margin(0, 1).
		Padding(0, 1).
		Width(boxWidth).
		Render(window)

	position := fmt.Sprintf("lines %d-%d of %d", p.offset+1, end, len(p.lines))
	positionLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		PaddingLeft(2).
		Render(position)

	sections := []string{tabBar, box, positionLine}

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("178")).
		PaddingLeft(2)

	for _, warning := range p.warnings {
		sections = append(sections, warnStyle.Render("⚠ "+warning))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p previewModel) hint() string {
	return "←/→ block • ↑/↓ scroll • pgup/pgdn page"
}
