package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ryanslynch/psrsb/internal/adapter"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// Duration of the fixed polarization-calibration track preceding a source
// scan.
const polCalTrackSec = 95.0

// sourceGroup collects the sources observed through one receiver.
type sourceGroup struct {
	band    m.FreqBand
	sources []m.Source
}

// Compile renders the observation into scheduling blocks, one per receiver
// group plus one flux-calibration block per group when enabled. The output
// is deterministic: compiling an unchanged model twice yields byte-identical
// text. Sources must carry resolved backend parameters (see EnsureParams);
// the model itself is not mutated.
func Compile(obs *m.ObservationModel, conv adapter.CoordConverter) ([]m.Block, error) {
	groups, err := groupByReceiver(obs)
	if err != nil {
		return nil, err
	}

	blocks := make([]m.Block, 0, 2*len(groups))

	for _, g := range groups {
		text, err := pulsarBlock(obs, g)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, m.Block{Label: g.band.Label + " Pulsars", Generated: text})
	}

	if obs.IncludeFluxCal {
		for _, g := range groups {
			text, err := fluxCalBlock(obs, g, conv)
			if err != nil {
				return nil, err
			}

			blocks = append(blocks, m.Block{Label: g.band.Label + " Flux Cal", Generated: text})
		}
	}

	return blocks, nil
}

// groupByReceiver partitions the sources by effective receiver, preserving
// first-seen order.
func groupByReceiver(obs *m.ObservationModel) ([]*sourceGroup, error) {
	var groups []*sourceGroup

	byReceiver := make(map[string]*sourceGroup)

	for _, src := range obs.Sources {
		label := obs.EffectiveBand(src)

		band, ok := BandByLabel(label)
		if !ok {
			return nil, m.InvalidFor(src.Name, "band", "unknown frequency band "+label)
		}

		if src.Params == nil {
			return nil, m.InvalidFor(src.Name, "params", "backend parameters not resolved")
		}

		g, ok := byReceiver[band.Receiver]
		if !ok {
			g = &sourceGroup{band: band}
			byReceiver[band.Receiver] = g
			groups = append(groups, g)
		}

		g.sources = append(g.sources, src)
	}

	return groups, nil
}

// pulsarBlock renders one receiver group: a header comment, a catalog per
// coordinate system, a configuration per source (plus a _cal variant for
// polarization-calibrated sources), and the observing sequence.
func pulsarBlock(obs *m.ObservationModel, g *sourceGroup) (string, error) {
	sections := []string{fmt.Sprintf("# %s pulsar observations", g.band.Label)}

	sections = append(sections, groupCatalogs(g.sources)...)

	for _, src := range g.sources {
		band, _ := BandByLabel(obs.EffectiveBand(src))
		mode := obs.EffectiveMode(src)
		ident := configIdent(src.Name)

		sections = append(sections, sourceConfig(ident, band, mode, src, false))
		if obs.PolCalEnabled(src) {
			sections = append(sections, sourceConfig(ident+"_cal", band, mode, src, true))
		}
	}

	sections = append(sections, pulsarSequence(obs, g))

	return strings.Join(sections, "\n\n") + "\n", nil
}

// groupCatalogs renders one Catalog block per distinct coordinate system in
// first-seen order.
func groupCatalogs(sources []m.Source) []string {
	var systems []m.CoordSystem

	rows := make(map[m.CoordSystem][]m.Source)

	for _, src := range sources {
		if _, ok := rows[src.System]; !ok {
			systems = append(systems, src.System)
		}

		rows[src.System] = append(rows[src.System], src)
	}

	catalogs := make([]string, 0, len(systems))
	for _, system := range systems {
		catalogs = append(catalogs, catalogBlock(system, rows[system]))
	}

	return catalogs
}

// catalogBlock renders a fixed-width source catalog understood by the
// scheduler. Coordinate strings are echoed verbatim.
func catalogBlock(system m.CoordSystem, sources []m.Source) string {
	head := "HEAD = NAME    RA              DEC"
	if system == m.CoordGalactic {
		head = "HEAD = NAME    GLON            GLAT"
	}

	var b strings.Builder

	b.WriteString("Catalog(\"\"\"\n")
	b.WriteString("format=spherical\n")
	b.WriteString("coordmode=" + string(system) + "\n")
	b.WriteString(head + "\n")

	for _, src := range sources {
		fmt.Fprintf(&b, "%-32s %s  %s\n", src.Name, src.Coord1, src.Coord2)
	}

	b.WriteString("\"\"\")")

	return b.String()
}

// sourceConfig renders the configuration block for one source. The _cal
// variant swaps the switching mode and noise diode to fire the cal signal;
// every other field is identical.
func sourceConfig(ident string, band m.FreqBand, mode m.ObsMode, src m.Source, cal bool) string {
	p := src.Params

	var b strings.Builder

	fmt.Fprintf(&b, "%s = \"\"\"\n", ident)
	writeCommonFields(&b, band, p, cal)
	fmt.Fprintf(&b, "vegas.obsmode = '%s'\n", string(mode))
	writeBackendFields(&b, p)

	switch {
	case mode.Fold():
		fmt.Fprintf(&b, "vegas.fold_parfile = '%s'\n", src.Parfile)
		fmt.Fprintf(&b, "vegas.fold_bins = %d\n", p.FoldBins)
		fmt.Fprintf(&b, "vegas.fold_dumptime = %s\n", pyFloat(p.FoldDumpSec))
	case mode == m.ModeCoherentSearch:
		// DM falls back to 0.0 when unset; validation normally prevents
		// reaching this with no DM.
		dm := 0.0
		if src.DM != nil {
			dm = *src.DM
		}

		fmt.Fprintf(&b, "vegas.dm = %s\n", pyFloat(dm))
	}

	b.WriteString("\"\"\"")

	return b.String()
}

// fluxConfig renders one deduplicated flux-calibration configuration.
func fluxConfig(n int, band m.FreqBand, p *m.BackendParams, coherent bool) string {
	obsmode := "cal"
	if coherent {
		obsmode = "coherent_cal"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "config_fluxcal_%d = \"\"\"\n", n)
	writeCommonFields(&b, band, p, true)
	fmt.Fprintf(&b, "vegas.obsmode = '%s'\n", obsmode)
	writeBackendFields(&b, p)
	b.WriteString("\"\"\"")

	return b.String()
}

// writeCommonFields emits the telescope-side fields shared by every
// configuration, in the order the scheduler expects.
func writeCommonFields(b *strings.Builder, band m.FreqBand, p *m.BackendParams, cal bool) {
	swmode, noisecal := "tp_nocal", "off"
	if cal {
		swmode, noisecal = "tp", "lo"
	}

	ifbw := 0
	if band.Label == "350 MHz" {
		ifbw = 80
	}

	restfreqs := make([]string, len(p.CenterFreqs))
	for i, f := range p.CenterFreqs {
		restfreqs[i] = fmtG(f)
	}

	b.WriteString("obstype = 'Pulsar'\n")
	b.WriteString("backend = 'VEGAS'\n")
	fmt.Fprintf(b, "receiver = '%s'\n", band.Receiver)
	fmt.Fprintf(b, "restfreq = %s\n", strings.Join(restfreqs, ", "))
	fmt.Fprintf(b, "bandwidth = %d\n", band.Bandwidth)
	fmt.Fprintf(b, "dopplertrackfreq = %s\n", fmtG(p.CenterFreqs[0]))
	fmt.Fprintf(b, "swmode = '%s'\n", swmode)
	fmt.Fprintf(b, "noisecal = '%s'\n", noisecal)
	b.WriteString("swper = 0.04\n")
	fmt.Fprintf(b, "tint = %s\n", fmtG(p.TintSec))
	fmt.Fprintf(b, "ifbw = %d\n", ifbw)
}

// writeBackendFields emits the spectrometer fields common to every
// configuration.
func writeBackendFields(b *strings.Builder, p *m.BackendParams) {
	fmt.Fprintf(b, "vegas.numchan = %d\n", p.NumChan)
	fmt.Fprintf(b, "vegas.outbits = %d\n", p.OutBits)
	fmt.Fprintf(b, "vegas.scale = %d\n", p.Scale)
	fmt.Fprintf(b, "vegas.polnmode = '%s'\n", strings.ToLower(string(p.Poln)))
	b.WriteString("vegas.subband = 1\n")
}

// pulsarSequence renders the observing sequence: reset, focus on the first
// source, then per source slew, the optional 95 s polarization-cal track
// with a reconfigure, and the requested track.
func pulsarSequence(obs *m.ObservationModel, g *sourceGroup) string {
	parts := []string{
		fmt.Sprintf("ResetConfig()\nAutoPeakFocus(location='%s')", g.sources[0].Name),
	}

	for _, src := range g.sources {
		ident := configIdent(src.Name)

		scan := m.DefaultScanSec
		if src.ScanLengthSec != nil {
			scan = *src.ScanLengthSec
		}

		var b strings.Builder

		fmt.Fprintf(&b, "Slew('%s')\n", src.Name)

		if obs.PolCalEnabled(src) {
			fmt.Fprintf(&b, "Configure(%s_cal)\n", ident)
			b.WriteString("Balance()\n")
			fmt.Fprintf(&b, "Track('%s', None, %s)\n", src.Name, pyFloat(polCalTrackSec))
			fmt.Fprintf(&b, "Configure(%s)\n", ident)
		} else {
			fmt.Fprintf(&b, "Configure(%s)\n", ident)
			b.WriteString("Balance()\n")
		}

		fmt.Fprintf(&b, "Track('%s', None, %s)", src.Name, pyFloat(scan))

		parts = append(parts, b.String())
	}

	return strings.Join(parts, "\n\n")
}

// fluxCalBlock renders the flux-calibration block for one receiver group: a
// catalog holding the selected calibrator, one configuration per unique
// (receiver, windows, bandwidth, numchan, coherence) combination among the
// group's sources in first-seen order, and an on/off sequence per
// configuration.
func fluxCalBlock(obs *m.ObservationModel, g *sourceGroup, conv adapter.CoordConverter) (string, error) {
	cal, err := selectCalibrator(obs, g, conv)
	if err != nil {
		return "", err
	}

	sections := []string{
		fmt.Sprintf("# %s flux calibration", g.band.Label),
		calibratorCatalog(cal),
	}

	var keys []string

	firstByKey := make(map[string]m.Source)

	for _, src := range g.sources {
		coherent := obs.EffectiveMode(src).Coherent()

		key := fluxConfigKey(g.band, src.Params, coherent)
		if _, ok := firstByKey[key]; ok {
			continue
		}

		keys = append(keys, key)
		firstByKey[key] = src
	}

	for i, key := range keys {
		src := firstByKey[key]
		sections = append(sections, fluxConfig(i+1, g.band, src.Params, obs.EffectiveMode(src).Coherent()))
	}

	sections = append(sections, fluxSequence(obs, cal, len(keys)))

	return strings.Join(sections, "\n\n") + "\n", nil
}

// selectCalibrator picks the calibrator named on the model, or the one
// nearest the group's mean position when none is named.
func selectCalibrator(obs *m.ObservationModel, g *sourceGroup, conv adapter.CoordConverter) (m.FluxCalibrator, error) {
	if obs.FluxCalSource != "" {
		cal, ok := CalibratorByName(obs.FluxCalSource)
		if !ok {
			return m.FluxCalibrator{}, m.Invalid("flux_cal_source", "unknown flux calibrator "+obs.FluxCalSource)
		}

		return cal, nil
	}

	ra, dec := MeanPosition(g.sources, conv)

	return FindNearest(ra, dec), nil
}

func calibratorCatalog(cal m.FluxCalibrator) string {
	var b strings.Builder

	b.WriteString("Catalog(\"\"\"\n")
	b.WriteString("format=spherical\n")
	b.WriteString("coordmode=J2000\n")
	b.WriteString("HEAD = NAME    RA              DEC\n")
	fmt.Fprintf(&b, "%-32s %s  %s\n", cal.Name, FormatRAHours(cal.RAHours), FormatDecDeg(cal.DecDeg))
	b.WriteString("\"\"\")")

	return b.String()
}

func fluxSequence(obs *m.ObservationModel, cal m.FluxCalibrator, numConfigs int) string {
	parts := []string{
		fmt.Sprintf("ResetConfig()\nAutoPeakFocus(location='%s')\nSlew('%s')", cal.Name, cal.Name),
	}

	for n := 1; n <= numConfigs; n++ {
		parts = append(parts, fmt.Sprintf(
			"Configure(config_fluxcal_%d)\nBalance()\nOnOff('%s', Offset('AzEl', 1.0, 0.0), %s)",
			n, cal.Name, pyFloat(obs.FluxCalScanSec)))
	}

	return strings.Join(parts, "\n\n")
}

// fluxConfigKey identifies a unique flux-calibration configuration.
func fluxConfigKey(band m.FreqBand, p *m.BackendParams, coherent bool) string {
	freqs := make([]string, len(p.CenterFreqs))
	for i, f := range p.CenterFreqs {
		freqs[i] = fmtG(f)
	}

	return fmt.Sprintf("%s|%s|%d|%d|%t", band.Receiver, strings.Join(freqs, ","), band.Bandwidth, p.NumChan, coherent)
}

// configIdent turns a source name into a scheduler-safe identifier by
// replacing every non-alphanumeric character with an underscore.
func configIdent(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			out[i] = '_'
		}
	}

	return string(out)
}

// FormatRAHours renders fractional hours as HH:MM:SS.SS.
func FormatRAHours(raHours float64) string {
	raHours = math.Mod(raHours, 24)
	if raHours < 0 {
		raHours += 24
	}

	cs := int64(math.Round(raHours * 360000))
	cs %= 24 * 360000

	h := cs / 360000
	cs %= 360000

	min := cs / 6000
	cs %= 6000

	return fmt.Sprintf("%02d:%02d:%05.2f", h, min, float64(cs)/100)
}

// FormatDecDeg renders decimal degrees as ±DD:MM:SS.S.
func FormatDecDeg(decDeg float64) string {
	sign := "+"
	if decDeg < 0 {
		sign = "-"
		decDeg = -decDeg
	}

	ds := int64(math.Round(decDeg * 36000))

	deg := ds / 36000
	ds %= 36000

	min := ds / 600
	ds %= 600

	return fmt.Sprintf("%s%02d:%02d:%04.1f", sign, deg, min, float64(ds)/10)
}

// fmtG renders a float in the shortest form that round-trips.
func fmtG(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// pyFloat renders a float the way the scheduler's configuration language
// writes them: integral values keep a trailing .0.
func pyFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
