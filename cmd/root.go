// Package cmd provides the root command and CLI setup for psrsb.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/adapter"
	"github.com/ryanslynch/psrsb/internal/domain"
	"github.com/ryanslynch/psrsb/internal/logging"
	m "github.com/ryanslynch/psrsb/internal/model"
)

var sessionStore adapter.SessionStore
var coordConverter adapter.CoordConverter
var blockStore adapter.BlockStore
var log logging.Logger
var workflow domain.Workflow

func init() {
	log = logging.NewFromEnv()
	sessionStore = adapter.NewSessionStore()
	coordConverter = adapter.NewCoordConverter()
	blockStore = adapter.NewBlockStore()
	workflow = domain.NewWorkflow(sessionStore, coordConverter, blockStore, log)
}

var sessionFlag string
var logLevelFlag string
var logFormatFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "psrsb",
		Short: "Build VEGAS pulsar scheduling blocks for the GBT",
		Long: `Psrsb builds Astrid scheduling blocks for pulsar observations with the
VEGAS spectrometer at the Green Bank Telescope. It resolves backend
parameters against the hardware mode tables, picks flux calibrators,
and compiles one block per receiver setup.

Run without a subcommand to open the interactive wizard on the session
file. When stdout is not a terminal the wizard falls back to a plain
summary of the compiled session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWizard(cmd, m.Path(sessionFlag))
		},
	}
	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "session.yaml", "session file to open")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, or error (default from PSRSB_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "log format: text or json (default from PSRSB_LOG_FORMAT)")
	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if logLevelFlag == "" && logFormatFlag == "" {
			return
		}

		log = logging.New(logging.Config{Level: logLevelFlag, Format: logFormatFlag})
		workflow = domain.NewWorkflow(sessionStore, coordConverter, blockStore, log)
	}

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadOrNewSession loads the session file, or starts an empty session when
// the file does not exist yet.
func loadOrNewSession(ctx context.Context, path m.Path) (*m.ObservationModel, error) {
	obs, err := workflow.LoadSession(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		return m.NewObservationModel(), nil
	}

	if err != nil {
		return nil, err
	}

	return obs, nil
}
