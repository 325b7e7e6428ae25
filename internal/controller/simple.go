package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ryanslynch/psrsb/internal/domain"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream. It prints
// read-only text and never prompts, which makes it safe for pipes and
// scripted runs.
type SimpleUI struct {
	cmd      *cobra.Command
	workflow domain.Workflow
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command, workflow domain.Workflow) *SimpleUI {
	return &SimpleUI{cmd: cmd, workflow: workflow}
}

// Run prints the session summary followed by every compiled scheduling
// block. The model is regenerated first so the output reflects the current
// sources and parameters.
func (s *SimpleUI) Run(ctx context.Context, obs *m.ObservationModel, sessionPath m.Path) error {
	if err := s.workflow.Regenerate(ctx, obs); err != nil {
		return err
	}

	if sessionPath != "" {
		s.printf("session: %s\n", sessionPath)
	}

	s.ShowSession(obs)

	for _, label := range obs.BlockLabels() {
		block, ok := obs.Block(label)
		if !ok {
			continue
		}

		marker := ""
		if block.Edited {
			marker = " (edited)"
		}

		s.printf("\n===== %s%s =====\n\n%s", label, marker, block.Text)
	}

	return nil
}

// ShowSession prints the global settings and the source table.
func (s *SimpleUI) ShowSession(obs *m.ObservationModel) {
	s.printf("band: %s  mode: %s", obs.GlobalBand, obs.GlobalMode.Label())

	if obs.PerSourceConfig {
		s.printf("  (per-source overrides enabled)")
	}

	s.printf("\n")

	if obs.IncludeFluxCal {
		cal := obs.FluxCalSource
		if cal == "" {
			cal = "nearest to first source"
		}

		s.printf("flux cal: %s, %s s scans\n", cal, formatSeconds(obs.FluxCalScanSec))
	}

	if obs.IncludePolCal {
		s.printf("polarization cal: on\n")
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "System", "Coord 1", "Coord 2", "Scan (s)", "Band", "Mode"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for _, src := range obs.Sources {
		scan := formatSeconds(m.DefaultScanSec)
		if src.ScanLengthSec != nil {
			scan = formatSeconds(*src.ScanLengthSec)
		}

		table.Append([]string{
			src.Name,
			string(src.System),
			src.Coord1,
			src.Coord2,
			scan,
			obs.EffectiveBand(src),
			obs.EffectiveMode(src).Label(),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(obs.Sources)),
		"", "", "", "", "", "",
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())
}

// ShowBands prints the receiver band table.
func (s *SimpleUI) ShowBands(bands []m.FreqBand) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Band", "Receiver", "Bandwidth (MHz)", "Center (MHz)", "Windows"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	for _, band := range bands {
		centers := make([]string, 0, len(band.WindowCenters()))
		for _, cf := range band.WindowCenters() {
			centers = append(centers, formatMHz(cf))
		}

		table.Append([]string{
			band.Label,
			band.Receiver,
			strconv.Itoa(band.Bandwidth),
			strings.Join(centers, ", "),
			strconv.Itoa(len(centers)),
		})
	}

	table.Render()
	s.printf("\n%s", tableBuffer.String())
}

// ShowBandDetail prints the valid channel counts for one band and mode,
// with the recommended scale and the integration time range each allows.
func (s *SimpleUI) ShowBandDetail(band m.FreqBand, mode m.ObsMode) {
	defaults := domain.ComputeDefaults(band, mode)

	s.printf("%s, %s mode\n", band.Describe(), mode.Label())
	s.printf("defaults: %d channels, tint %s s, %d-bit output\n",
		defaults.NumChan, formatSeconds(defaults.TintSec), defaults.OutBits)

	if mode.Fold() {
		s.printf("fold: %d bins, %s s dumps\n",
			defaults.FoldBins, formatSeconds(defaults.FoldDumpSec))
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Channels", "Scale", "Min Tint (s)", "Max Tint (s)"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, numchan := range domain.GetValidNumchanValues(band.Bandwidth, mode.Coherent()) {
		choices := domain.TintChoices(band.Bandwidth, numchan, mode.Coherent())
		if len(choices) == 0 {
			continue
		}

		table.Append([]string{
			strconv.Itoa(numchan),
			strconv.Itoa(domain.GetRecommendedScale(band.Bandwidth, numchan, mode.Coherent())),
			formatSeconds(choices[0]),
			formatSeconds(choices[len(choices)-1]),
		})
	}

	table.Render()
	s.printf("\n%s", tableBuffer.String())
}

// ShowCalibrators prints the flux calibrator table with each source's
// predicted flux density at the given frequency.
func (s *SimpleUI) ShowCalibrators(cals []m.FluxCalibrator, freqMHz float64) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{
		"Name", "RA (J2000)", "Dec (J2000)",
		fmt.Sprintf("Flux @ %s MHz (Jy)", formatMHz(freqMHz)),
	})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, cal := range cals {
		table.Append([]string{
			cal.Name,
			domain.FormatRAHours(cal.RAHours),
			domain.FormatDecDeg(cal.DecDeg),
			fmt.Sprintf("%.1f", domain.FluxAt(cal, freqMHz)),
		})
	}

	table.Render()
	s.printf("\n%s", tableBuffer.String())
}

// ShowNearest prints the calibrator closest to a position.
func (s *SimpleUI) ShowNearest(cal m.FluxCalibrator, separationDeg float64) {
	s.printf("nearest calibrator: %s (%s, %s), %.1f deg away\n",
		cal.Name,
		domain.FormatRAHours(cal.RAHours),
		domain.FormatDecDeg(cal.DecDeg),
		separationDeg)
}

// ShowPosition prints a pulsar catalog lookup result.
func (s *SimpleUI) ShowPosition(name string, pos m.SkyPosition, found bool) {
	if !found {
		s.printf("%s: not found in catalog\n", name)
		return
	}

	s.printf("%s: RA %s  Dec %s (J2000)\n", name, pos.RA, pos.Dec)
}

// ShowValidation prints the validation verdict and any advisory warnings.
func (s *SimpleUI) ShowValidation(err error, warnings []string) {
	if err != nil {
		s.printf("validation failed: %v\n", err)
	} else {
		s.printf("validation passed\n")
	}

	for _, w := range warnings {
		s.printf("warning: %s\n", w)
	}
}

// ShowWritten prints the scheduling block files that were saved.
func (s *SimpleUI) ShowWritten(paths []m.Path) {
	for _, path := range paths {
		s.printf("wrote %s\n", path)
	}

	s.printf("%d block(s) written\n", len(paths))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// formatSeconds renders a duration in seconds the way the scheduling block
// does, so the summary matches the compiled text.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatMHz trims trailing zeros from a frequency in MHz.
func formatMHz(v float64) string {
	out := strconv.FormatFloat(v, 'f', 2, 64)
	out = strings.TrimRight(out, "0")
	out = strings.TrimRight(out, ".")

	return out
}
