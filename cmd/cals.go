package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/controller"
	"github.com/ryanslynch/psrsb/internal/domain"
)

var calsFreqFlag float64
var calsNearFlag string

// calsCmd represents the cals command.
var calsCmd = newCalsCmd()

func newCalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cals",
		Short: "List flux calibrators",
		Long: `List the flux calibrator catalog with fluxes evaluated at a frequency.
With --near, print only the calibrator closest to a J2000 position given
as sexagesimal "RA DEC", e.g. --near "13:31:08.4 +30:30:33".`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui := controller.NewSimpleUI(cmd, workflow)

			if calsNearFlag == "" {
				ui.ShowCalibrators(domain.FluxCalibrators, calsFreqFlag)
				return nil
			}

			fields := strings.Fields(calsNearFlag)
			if len(fields) != 2 {
				return errors.New(`--near takes a quoted "RA DEC" pair`)
			}

			ra, err := domain.ParseSexagesimal(fields[0])
			if err != nil {
				return err
			}

			dec, err := domain.ParseSexagesimal(fields[1])
			if err != nil {
				return err
			}

			cal := domain.FindNearest(ra, dec)
			ui.ShowNearest(cal, domain.AngularSeparation(ra, dec, cal.RAHours, cal.DecDeg))

			return nil
		},
	}
	cmd.Flags().Float64Var(&calsFreqFlag, "freq", 1400, "frequency in MHz for the flux column")
	cmd.Flags().StringVar(&calsNearFlag, "near", "", `J2000 position as "RA DEC" to search near`)

	return cmd
}

func init() {
	rootCmd.AddCommand(calsCmd)
}
