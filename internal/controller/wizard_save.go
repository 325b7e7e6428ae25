package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// saveModel is the last wizard page. It saves the session file and writes
// the scheduling block files.
type saveModel struct {
	pathInput textinput.Model
	dirInput  textinput.Model
	focusDir  bool
	status    string
	failed    bool
	valErr    error
}

func newSaveModel(session m.Path) saveModel {
	path := textinput.New()
	path.Placeholder = "session.yaml"
	path.CharLimit = 256
	path.Width = 48
	path.SetValue(string(session))

	dir := textinput.New()
	dir.Placeholder = "directory for block files"
	dir.CharLimit = 256
	dir.Width = 48
	dir.SetValue(".")

	return saveModel{pathInput: path, dirInput: dir}
}

func (s saveModel) enter(workflow domain.Workflow, obs *m.ObservationModel) saveModel {
	s.focusDir = false
	s.status = ""
	s.failed = false
	s.valErr = workflow.Validate(obs)
	s.dirInput.Blur()

	// Focus returns the blink cmd; the top model already blinks.
	s.pathInput.Focus()

	return s
}

func (s saveModel) typing() bool {
	return true
}

func (s saveModel) Update(ctx context.Context, msg tea.Msg, workflow domain.Workflow, obs *m.ObservationModel) (saveModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "down":
			s.focusDir = !s.focusDir

			if s.focusDir {
				s.pathInput.Blur()
				return s, s.dirInput.Focus()
			}

			s.dirInput.Blur()

			return s, s.pathInput.Focus()

		case "enter":
			if s.focusDir {
				return s.writeBlocks(ctx, workflow, obs), nil
			}

			return s.saveSession(ctx, workflow, obs), nil
		}
	}

	var cmd tea.Cmd

	if s.focusDir {
		s.dirInput, cmd = s.dirInput.Update(msg)
	} else {
		s.pathInput, cmd = s.pathInput.Update(msg)
	}

	return s, cmd
}

func (s saveModel) saveSession(ctx context.Context, workflow domain.Workflow, obs *m.ObservationModel) saveModel {
	path := strings.TrimSpace(s.pathInput.Value())
	if path == "" {
		s.status = "enter a session file path"
		s.failed = true

		return s
	}

	if err := workflow.SaveSession(ctx, m.Path(path), obs); err != nil {
		s.status = err.Error()
		s.failed = true

		return s
	}

	s.status = "session saved to " + path
	s.failed = false

	return s
}

func (s saveModel) writeBlocks(ctx context.Context, workflow domain.Workflow, obs *m.ObservationModel) saveModel {
	dir := strings.TrimSpace(s.dirInput.Value())
	if dir == "" {
		s.status = "enter an output directory"
		s.failed = true

		return s
	}

	paths, err := workflow.WriteBlocks(ctx, obs, m.Path(dir))
	if err != nil {
		s.status = err.Error()
		s.failed = true

		return s
	}

	s.status = fmt.Sprintf("%d block file(s) written to %s", len(paths), dir)
	s.failed = false

	return s
}

func (s saveModel) View() string {
	labelStyle := lipgloss.NewStyle().PaddingLeft(2)

	pathMarker, dirMarker := "▸", " "
	if s.focusDir {
		pathMarker, dirMarker = " ", "▸"
	}

	lines := []string{
		"",
		labelStyle.Render(fmt.Sprintf("%s session file     %s", pathMarker, s.pathInput.View())),
		labelStyle.Render(fmt.Sprintf("%s block directory  %s", dirMarker, s.dirInput.View())),
		"",
	}

	if s.valErr != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			PaddingLeft(2)

		lines = append(lines, errStyle.Render("⚠ validation: "+s.valErr.Error()))
	} else {
		okStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("35")).
			PaddingLeft(2)

		lines = append(lines, okStyle.Render("validation passed"))
	}

	if s.status != "" {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color("35")).
			PaddingLeft(2)

		if s.failed {
			style = style.Foreground(lipgloss.Color("196"))
		}

		lines = append(lines, style.Render(s.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s saveModel) hint() string {
	return "↑/↓ field • enter save"
}
