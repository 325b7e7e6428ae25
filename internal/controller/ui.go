// Package controller renders observing sessions on the terminal. It offers
// two implementations of the UI interface: a plain-text printer for piped
// output and scripts, and a full-screen Bubble Tea wizard for interactive
// session building.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// UI presents an observation session to the observer.
type UI interface {
	// Run presents the session. The wizard edits the model in place and
	// offers to save it back to sessionPath; the plain implementation
	// prints a read-only summary of the session and its compiled blocks.
	Run(ctx context.Context, obs *m.ObservationModel, sessionPath m.Path) error
}

// NewUI creates a UI based on whether TTY mode is enabled.
// When useTTY is true, it returns the Bubble Tea wizard.
// When useTTY is false, it returns a SimpleUI (plain text).
func NewUI(cmd *cobra.Command, useTTY bool, workflow domain.Workflow) UI {
	if useTTY {
		return NewWizardUI(cmd.OutOrStdout(), workflow)
	}

	return NewSimpleUI(cmd, workflow)
}

// IsTTY checks if the given writer is a terminal (TTY).
// Returns true if the output is an interactive terminal.
// Returns false if the output is redirected to a file or pipe.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
