package controller

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// WizardUI implements UI as a full-screen Bubble Tea application that walks
// the observer through building a session: sources, band and mode, flux
// calibration, backend parameters, a preview of the compiled blocks, and
// finally saving.
type WizardUI struct {
	output   io.Writer
	workflow domain.Workflow
}

// NewWizardUI creates a new WizardUI writing to output.
func NewWizardUI(output io.Writer, workflow domain.Workflow) *WizardUI {
	return &WizardUI{output: output, workflow: workflow}
}

// Run starts the wizard and blocks until the observer quits. The model is
// edited in place, so a caller holding obs sees the final state even when
// the observer quits without saving.
func (w *WizardUI) Run(ctx context.Context, obs *m.ObservationModel, sessionPath m.Path) error {
	model := newWizardModel(ctx, w.workflow, obs, sessionPath)

	program := tea.NewProgram(model, tea.WithOutput(w.output), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}
