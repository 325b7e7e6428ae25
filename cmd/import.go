package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/adapter"
	m "github.com/ryanslynch/psrsb/internal/model"
)

var importSessionFlag string
var importScanFlag float64
var importLookupFlag string

// importCmd represents the import command.
var importCmd = newImportCmd()

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import CATALOG",
		Short: "Import sources from an observer catalog",
		Long: `Import sources from a whitespace-separated observer catalog into the
session, creating the session file if it does not exist. Names already
in the session are skipped. Catalog coordinates are kept verbatim.

With --lookup, sources that the catalog left without coordinates are
filled in from a psrcat-format database file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			obs, err := loadOrNewSession(ctx, m.Path(importSessionFlag))
			if err != nil {
				return err
			}

			var scanSec *float64
			if cmd.Flags().Changed("scan") {
				scanSec = &importScanFlag
			}

			added, err := workflow.ImportCatalog(ctx, obs, m.Path(args[0]), scanSec)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d source(s) from %s\n", added, args[0])

			if importLookupFlag != "" {
				cat := adapter.NewPulsarCatalog(m.Path(importLookupFlag))

				filled, err := workflow.LookupPositions(ctx, cat, obs)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "filled %d position(s) from %s\n", filled, importLookupFlag)
			}

			if err := workflow.SaveSession(ctx, m.Path(importSessionFlag), obs); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "session saved to %s\n", importSessionFlag)

			return nil
		},
	}
	cmd.Flags().StringVarP(&importSessionFlag, "session", "s", "session.yaml", "session file to import into")
	cmd.Flags().Float64Var(&importScanFlag, "scan", 0, "scan length in seconds applied to every imported source")
	cmd.Flags().StringVar(&importLookupFlag, "lookup", "", "psrcat database file for filling missing coordinates")

	return cmd
}

func init() {
	rootCmd.AddCommand(importCmd)
}
