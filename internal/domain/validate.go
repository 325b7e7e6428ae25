package domain

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// Characters not allowed in source names: anything unsafe in filenames or
// needing shell escaping.
const invalidNameChars = " #/\\\x00'\"!$&()*;<>?[]`{|}~^"

// MaxNameLen is the longest accepted source name.
const MaxNameLen = 32

var (
	raPattern  = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`)
	decPattern = regexp.MustCompile(`^[+-]?\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`)
)

// ParseSexagesimal parses HH:MM:SS.SS or ±DD:MM:SS.SS into the base unit
// (hours or degrees). Minutes must be integral, minutes and seconds in
// [0, 60).
func ParseSexagesimal(text string) (float64, error) {
	parts := strings.Split(strings.TrimLeft(text, "+-"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("expected 2 or 3 colon-separated fields, got %d", len(parts))
	}

	vals := make([]float64, len(parts))

	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("field %d is not a number: %q", i+1, p)
		}

		vals[i] = v
	}

	if vals[0] != math.Trunc(vals[0]) || vals[0] < 0 {
		return 0, fmt.Errorf("leading field must be a non-negative integer")
	}

	if vals[1] != math.Trunc(vals[1]) || vals[1] < 0 || vals[1] >= 60 {
		return 0, fmt.Errorf("minutes must be an integer in [0, 60)")
	}

	if len(vals) == 3 && (vals[2] < 0 || vals[2] >= 60) {
		return 0, fmt.Errorf("seconds must be in [0, 60)")
	}

	total := vals[0] + vals[1]/60
	if len(vals) == 3 {
		total += vals[2] / 3600
	}

	if strings.HasPrefix(text, "-") {
		total = -total
	}

	return total, nil
}

// ValidateSourceName checks the naming rules shared by sources and
// calibrators: non-empty, at most 32 characters, no filesystem- or
// shell-hostile characters.
func ValidateSourceName(name string) error {
	if name == "" {
		return m.Invalid("name", "source name is required")
	}

	if len(name) > MaxNameLen {
		return m.Invalid("name", fmt.Sprintf("source name must be %d characters or fewer", MaxNameLen))
	}

	var bad []string

	for _, r := range name {
		if strings.ContainsRune(invalidNameChars, r) {
			bad = append(bad, string(r))
		}
	}

	if len(bad) > 0 {
		sort.Strings(bad)

		return m.Invalid("name", "source name contains invalid characters: "+strings.Join(dedupeStrings(bad), " "))
	}

	return nil
}

// ValidateSource checks one source's name, coordinates, and scan length.
// Coordinate strings are validated per the source's coordinate system:
// sexagesimal with range checks for equatorial frames, decimal degrees for
// galactic. Failures carry the source name, field, and reason.
func ValidateSource(src m.Source) error {
	if err := ValidateSourceName(src.Name); err != nil {
		return forSource(src.Name, err)
	}

	if src.Coord1 == "" {
		return m.InvalidFor(src.Name, "coord1", "coordinate 1 is required")
	}

	if src.Coord2 == "" {
		return m.InvalidFor(src.Name, "coord2", "coordinate 2 is required")
	}

	if src.System == m.CoordGalactic {
		l, err := strconv.ParseFloat(src.Coord1, 64)
		if err != nil {
			return m.InvalidFor(src.Name, "coord1", "galactic longitude must be a number in degrees")
		}

		if l < 0 || l > 360 {
			return m.InvalidFor(src.Name, "coord1", "galactic longitude must be between 0 and 360 degrees")
		}

		b, err := strconv.ParseFloat(src.Coord2, 64)
		if err != nil {
			return m.InvalidFor(src.Name, "coord2", "galactic latitude must be a number in degrees")
		}

		if b < -90 || b > 90 {
			return m.InvalidFor(src.Name, "coord2", "galactic latitude must be between -90 and +90 degrees")
		}
	} else {
		if !raPattern.MatchString(src.Coord1) {
			return m.InvalidFor(src.Name, "coord1", "RA must be in HH:MM:SS.SS format (e.g. 17:13:49.53)")
		}

		ra, err := ParseSexagesimal(src.Coord1)
		if err != nil || ra < 0 || ra >= 24 {
			return m.InvalidFor(src.Name, "coord1", "RA must be between 00:00:00 and 23:59:59.99")
		}

		if !decPattern.MatchString(src.Coord2) {
			return m.InvalidFor(src.Name, "coord2", "Dec must be in ±DD:MM:SS.SS format (e.g. +07:47:37.48)")
		}

		dec, err := ParseSexagesimal(src.Coord2)
		if err != nil || dec < -90 || dec > 90 {
			return m.InvalidFor(src.Name, "coord2", "Dec must be between -90:00:00 and +90:00:00")
		}
	}

	if src.ScanLengthSec != nil && *src.ScanLengthSec <= 0 {
		return m.InvalidFor(src.Name, "scan_length", "scan length must be greater than zero")
	}

	return nil
}

// ValidateModel checks the whole observation before compilation, mirroring
// the gates an observer passes through when preparing a session: every
// source valid with a scan length, unique names, resolvable bands and modes,
// an ephemeris for fold modes, a positive DM for coherent search, and sane
// explicit backend parameters.
func ValidateModel(obs *m.ObservationModel) error {
	if len(obs.Sources) == 0 {
		return m.Invalid("sources", "at least one source is required")
	}

	seen := make(map[string]bool, len(obs.Sources))

	for _, src := range obs.Sources {
		if err := ValidateSource(src); err != nil {
			return err
		}

		if seen[src.Name] {
			return m.InvalidFor(src.Name, "name", "duplicate source name")
		}

		seen[src.Name] = true

		if src.ScanLengthSec == nil {
			return m.InvalidFor(src.Name, "scan_length", "scan length is required")
		}

		bandLabel := obs.EffectiveBand(src)

		band, ok := BandByLabel(bandLabel)
		if !ok {
			return m.InvalidFor(src.Name, "band", "unknown frequency band "+bandLabel)
		}

		mode := obs.EffectiveMode(src)
		if !mode.Valid() {
			return m.InvalidFor(src.Name, "mode", "unknown observing mode "+string(mode))
		}

		if mode.Fold() && src.Parfile == "" {
			return m.InvalidFor(src.Name, "parfile", "an ephemeris file is required for fold modes")
		}

		if mode == m.ModeCoherentSearch && (src.DM == nil || *src.DM <= 0) {
			return m.InvalidFor(src.Name, "dm", "a DM greater than zero is required for coherent search")
		}

		if err := validateParams(src, band, mode); err != nil {
			return err
		}
	}

	if obs.IncludeFluxCal && obs.FluxCalScanSec <= 0 {
		return m.Invalid("flux_cal_scan", "flux calibration scan duration must be greater than zero")
	}

	if obs.IncludeFluxCal && obs.FluxCalSource != "" {
		if _, ok := CalibratorByName(obs.FluxCalSource); !ok {
			return m.Invalid("flux_cal_source", "unknown flux calibrator "+obs.FluxCalSource)
		}
	}

	return nil
}

func validateParams(src m.Source, band m.FreqBand, mode m.ObsMode) error {
	p := src.Params
	if p == nil {
		return nil
	}

	if mode.Fold() {
		if p.FoldBins <= 0 {
			return m.InvalidFor(src.Name, "fold_bins", "fold bins must be greater than zero")
		}

		if p.FoldDumpSec <= 0 {
			return m.InvalidFor(src.Name, "fold_dumptime", "fold dump time must be greater than zero")
		}
	}

	for i, cf := range p.CenterFreqs {
		if cf <= 0 {
			return m.InvalidFor(src.Name, "center_freq",
				fmt.Sprintf("center frequency must be greater than zero (window %d)", i+1))
		}
	}

	if !p.Stale(band.Label, mode) && len(p.CenterFreqs) != len(band.WindowCenters()) {
		return m.InvalidFor(src.Name, "center_freq",
			fmt.Sprintf("expected %d window center frequencies, got %d",
				len(band.WindowCenters()), len(p.CenterFreqs)))
	}

	return nil
}

// RateWarnings returns advisory warnings about the output data rate and
// accumulation length. Warnings never block an observation; they call out
// configurations the hardware accepts but observers usually regret.
func RateWarnings(p *m.BackendParams, bandwidthMHz int, coherent bool) []string {
	if p == nil || p.TintSec <= 0 {
		return nil
	}

	var warnings []string

	rateMBs := float64(p.Poln.NumPol()) * float64(p.NumChan) / p.TintSec / 1e6
	if rateMBs > 400 {
		warnings = append(warnings,
			fmt.Sprintf("data rate (%.0f MB/s) exceeds the 400 MB/s per-bank limit", rateMBs))
	}

	if !coherent {
		acclen := int(math.Round(p.TintSec * float64(bandwidthMHz) * 1e6 / float64(p.NumChan)))
		if acclen > 64 {
			warnings = append(warnings,
				fmt.Sprintf("large accumulation length (%d) may cause loss of numerical resolution", acclen))
		}
	}

	return warnings
}

// ModelWarnings collects rate warnings for every source in the session,
// each prefixed with the source name.
func ModelWarnings(obs *m.ObservationModel) []string {
	var warnings []string

	for _, src := range obs.Sources {
		if src.Params == nil {
			continue
		}

		band, ok := BandByLabel(obs.EffectiveBand(src))
		if !ok {
			continue
		}

		mode := obs.EffectiveMode(src)
		for _, w := range RateWarnings(src.Params, band.Bandwidth, mode.Coherent()) {
			warnings = append(warnings, fmt.Sprintf("%s: %s", src.Name, w))
		}
	}

	return warnings
}

func forSource(name string, err error) error {
	if verr, ok := err.(*m.ValidationError); ok {
		return m.InvalidFor(name, verr.Field, verr.Reason)
	}

	return err
}

func dedupeStrings(sorted []string) []string {
	out := sorted[:0]

	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}

	return out
}
