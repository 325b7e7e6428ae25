package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/controller"
	m "github.com/ryanslynch/psrsb/internal/model"
)

var wizardSessionFlag string

// wizardCmd represents the wizard command.
var wizardCmd = newWizardCmd()

func newWizardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Build a session interactively",
		Long: `Open the full-screen wizard on a session file. Pages cover the source
list, receiver band and observing mode, flux calibration, backend
parameters, a live preview of the compiled blocks, and saving. A missing
session file starts an empty session; it is created on first save.

When stdout is not a terminal the wizard falls back to a plain summary
of the compiled session.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWizard(cmd, m.Path(wizardSessionFlag))
		},
	}
	cmd.Flags().StringVarP(&wizardSessionFlag, "session", "s", "session.yaml", "session file to open")

	return cmd
}

func runWizard(cmd *cobra.Command, session m.Path) error {
	ctx := cmd.Context()

	obs, err := loadOrNewSession(ctx, session)
	if err != nil {
		return err
	}

	ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout), workflow)

	return ui.Run(ctx, obs, session)
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}
