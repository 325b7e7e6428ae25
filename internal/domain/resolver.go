package domain

import (
	"math"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// Default output bit depth for all modes.
const defaultOutBits = 8

// Incoherent modes aim for roughly 80 µs of integration per sample; the
// accumulation length is the nearest power of two that achieves it.
const targetTintSec = 80e-6

// Coherent modes aim for roughly 1.5 MHz per spectral channel.
const targetChanWidthMHz = 1.5

// ComputeDefaults resolves the default backend parameters for a band and
// observing mode. It is a pure function: the same (band, mode) always yields
// identical parameters.
func ComputeDefaults(band m.FreqBand, mode m.ObsMode) m.BackendParams {
	bw := band.Bandwidth
	coherent := mode.Coherent()

	numchan := defaultNumChan(bw, coherent)
	acclen := defaultAcclen(bw, numchan, coherent)

	poln := m.PolnFullStokes
	if mode == m.ModeSearch {
		poln = m.PolnTotalIntensity
	}

	foldBins := 256
	if coherent {
		foldBins = 2048
	}

	params := m.BackendParams{
		NumChan:     numchan,
		OutBits:     defaultOutBits,
		Scale:       GetRecommendedScale(bw, numchan, coherent),
		Poln:        poln,
		TintSec:     ComputeTint(acclen, numchan, bw),
		FoldBins:    foldBins,
		FoldDumpSec: 10,
		CenterFreqs: band.WindowCenters(),
	}
	params.MarkProvenance(band.Label, mode)

	return params
}

// ComputeTint returns the integration time in seconds for an accumulation
// length, channel count, and bandwidth. Every tint in the system derives
// from this formula.
func ComputeTint(acclen, numchan, bandwidthMHz int) float64 {
	return float64(acclen) * float64(numchan) / (float64(bandwidthMHz) * 1e6)
}

// TintChoices returns the selectable integration times for a channel count,
// in ascending order: one per valid accumulation length.
func TintChoices(bandwidthMHz, numchan int, coherent bool) []float64 {
	acclens := GetValidAcclenValues(coherent)

	tints := make([]float64, len(acclens))
	for i, acclen := range acclens {
		tints[i] = ComputeTint(acclen, numchan, bandwidthMHz)
	}

	return tints
}

// ClosestTint returns the choice nearest to a previously-held tint. The
// earliest choice wins ties, so re-selection after a channel-count change is
// deterministic.
func ClosestTint(choices []float64, prev float64) float64 {
	if len(choices) == 0 {
		return prev
	}

	best := choices[0]
	bestDiff := math.Abs(choices[0] - prev)

	for _, c := range choices[1:] {
		if diff := math.Abs(c - prev); diff < bestDiff {
			best = c
			bestDiff = diff
		}
	}

	return best
}

// SetNumChan applies a user-selected channel count to the parameters,
// re-deriving the scale from the characterization table and snapping the
// integration time to the valid choice nearest the previous one. Scale is
// never a free field.
func SetNumChan(p *m.BackendParams, bandwidthMHz int, coherent bool, numchan int) error {
	valid := GetValidNumchanValues(bandwidthMHz, coherent)
	if !containsInt(valid, numchan) {
		return m.Invalid("numchan", "not a valid channel count for this bandwidth")
	}

	p.NumChan = numchan
	p.Scale = GetRecommendedScale(bandwidthMHz, numchan, coherent)
	p.TintSec = ClosestTint(TintChoices(bandwidthMHz, numchan, coherent), p.TintSec)

	return nil
}

// SetTint applies a user-selected integration time, which must be one of the
// values produced by TintChoices for the current channel count.
func SetTint(p *m.BackendParams, bandwidthMHz int, coherent bool, tint float64) error {
	for _, c := range TintChoices(bandwidthMHz, p.NumChan, coherent) {
		if c == tint {
			p.TintSec = tint

			return nil
		}
	}

	return m.Invalid("tint", "not a valid integration time for this channel count")
}

// EnsureParams recomputes every source's backend parameters whose provenance
// no longer matches its effective band and mode. User-edited parameters for
// the same (band, mode) are left untouched.
func EnsureParams(obs *m.ObservationModel) error {
	for i := range obs.Sources {
		src := &obs.Sources[i]

		bandLabel := obs.EffectiveBand(*src)
		band, ok := BandByLabel(bandLabel)
		if !ok {
			return m.InvalidFor(src.Name, "band", "unknown frequency band "+bandLabel)
		}

		mode := obs.EffectiveMode(*src)
		if !mode.Valid() {
			return m.InvalidFor(src.Name, "mode", "unknown observing mode "+string(mode))
		}

		if src.Params == nil || src.Params.Stale(bandLabel, mode) {
			params := ComputeDefaults(band, mode)
			src.Params = &params
		}
	}

	return nil
}

// defaultNumChan picks the default channel count: for coherent modes the
// power of two nearest the 1.5 MHz/channel target snapped to the nearest
// table entry, for incoherent modes 4096 or the table maximum when the
// bandwidth has no 4096 entry.
func defaultNumChan(bandwidthMHz int, coherent bool) int {
	valid := GetValidNumchanValues(bandwidthMHz, coherent)

	if !coherent {
		if containsInt(valid, 4096) {
			return 4096
		}

		return valid[len(valid)-1]
	}

	want := nearestPowTwo(float64(bandwidthMHz) / targetChanWidthMHz)

	return snapToValid(want, valid)
}

// defaultAcclen picks the default accumulation length: coherent modes always
// use the maximum (16), incoherent modes use the power of two nearest the
// 80 µs target clamped to [1, 1024].
func defaultAcclen(bandwidthMHz, numchan int, coherent bool) int {
	if coherent {
		return 16
	}

	target := targetTintSec * float64(bandwidthMHz) * 1e6 / float64(numchan)

	acclen := nearestPowTwo(target)
	if acclen < 1 {
		acclen = 1
	}

	if acclen > 1024 {
		acclen = 1024
	}

	return acclen
}

// nearestPowTwo returns the power of two nearest to x, ties toward the
// smaller value.
func nearestPowTwo(x float64) int {
	if x <= 1 {
		return 1
	}

	lower := 1
	for float64(lower*2) <= x {
		lower *= 2
	}

	upper := lower * 2
	if float64(upper)-x < x-float64(lower) {
		return upper
	}

	return lower
}

// snapToValid returns the entry of a sorted slice nearest to want, ties
// toward the smaller entry.
func snapToValid(want int, valid []int) int {
	best := valid[0]
	bestDiff := abs(valid[0] - want)

	for _, v := range valid[1:] {
		if diff := abs(v - want); diff < bestDiff {
			best = v
			bestDiff = diff
		}
	}

	return best
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}

	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
