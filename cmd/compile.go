package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/controller"
	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

var compileSessionFlag string
var compileOutFlag string
var compileStdoutFlag bool

// compileCmd represents the compile command.
var compileCmd = newCompileCmd()

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a session into scheduling block files",
		Long: `Compile the session into Astrid scheduling blocks, one file per receiver
setup plus one per flux-calibration group. Blocks edited by hand keep
their edited text; everything else is regenerated from the current
sources and backend parameters.

With --stdout the blocks are concatenated to standard output instead of
written to files. Data-rate warnings go to standard error either way.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			obs, err := workflow.LoadSession(ctx, m.Path(compileSessionFlag))
			if err != nil {
				return err
			}

			if err := workflow.Validate(obs); err != nil {
				return err
			}

			if err := workflow.Regenerate(ctx, obs); err != nil {
				return err
			}

			for _, warning := range domain.ModelWarnings(obs) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}

			if compileStdoutFlag {
				return blockStore.WriteTo(cmd.OutOrStdout(), obs.Blocks)
			}

			paths, err := workflow.WriteBlocks(ctx, obs, m.Path(compileOutFlag))
			if err != nil {
				return err
			}

			controller.NewSimpleUI(cmd, workflow).ShowWritten(paths)

			return nil
		},
	}
	cmd.Flags().StringVarP(&compileSessionFlag, "session", "s", "session.yaml", "session file to compile")
	cmd.Flags().StringVarP(&compileOutFlag, "out", "o", ".", "directory for the block files")
	cmd.Flags().BoolVar(&compileStdoutFlag, "stdout", false, "print the blocks instead of writing files")

	return cmd
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
