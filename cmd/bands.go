package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/controller"
	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

var bandsBandFlag string
var bandsModeFlag string

// bandsCmd represents the bands command.
var bandsCmd = newBandsCmd()

func newBandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bands",
		Short: "List receiver bands and their backend tables",
		Long: `List the supported receiver bands. With --band, show the valid channel
counts, scale factors, and integration time range for that band in a
given observing mode (coherent_fold, coherent_search, fold, or search).`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui := controller.NewSimpleUI(cmd, workflow)

			if bandsBandFlag == "" {
				ui.ShowBands(domain.FreqBands)
				return nil
			}

			band, ok := domain.BandByLabel(bandsBandFlag)
			if !ok {
				return fmt.Errorf("unknown band %q, have %s",
					bandsBandFlag, strings.Join(domain.BandNames(), ", "))
			}

			mode := m.ModeCoherentFold
			if bandsModeFlag != "" {
				parsed, err := m.ParseObsMode(bandsModeFlag)
				if err != nil {
					return err
				}

				mode = parsed
			}

			ui.ShowBandDetail(band, mode)

			return nil
		},
	}
	cmd.Flags().StringVar(&bandsBandFlag, "band", "", "band label to detail, e.g. L-band")
	cmd.Flags().StringVar(&bandsModeFlag, "mode", "", "observing mode for the detail table")

	return cmd
}

func init() {
	rootCmd.AddCommand(bandsCmd)
}
