package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/adapter"
	"github.com/ryanslynch/psrsb/internal/controller"
	m "github.com/ryanslynch/psrsb/internal/model"
)

var lookupDBFlag string

// lookupCmd represents the lookup command.
var lookupCmd = newLookupCmd()

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "Look up a pulsar position in a psrcat database",
		Long: `Look up a pulsar's J2000 position in a psrcat-format database file.
Name matching tries the usual variants, so 1713+0747, J1713+0747, and
PSR J1713+0747 all find the same record. The database file comes from
--db or the PSRCAT_FILE environment variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := lookupDBFlag
			if db == "" {
				db = os.Getenv("PSRCAT_FILE")
			}

			if db == "" {
				return errors.New("no database: pass --db or set PSRCAT_FILE")
			}

			cat := adapter.NewPulsarCatalog(m.Path(db))

			pos, found, err := cat.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			controller.NewSimpleUI(cmd, workflow).ShowPosition(args[0], pos, found)

			return nil
		},
	}
	cmd.Flags().StringVar(&lookupDBFlag, "db", "", "psrcat database file (default $PSRCAT_FILE)")

	return cmd
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
