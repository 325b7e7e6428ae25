package model

// BackendParams holds the resolved spectrometer settings for one source.
//
// Scale and TintSec are derived values: scale always equals the
// characterization-table entry for (bandwidth, NumChan, coherence) and tint
// always equals acclen * NumChan / (bandwidth_MHz * 1e6). Neither is ever
// edited directly.
type BackendParams struct {
	NumChan     int
	OutBits     int
	Scale       int
	Poln        PolnMode
	TintSec     float64
	FoldBins    int
	FoldDumpSec float64
	CenterFreqs []float64

	// Provenance records the (band, mode) combination that produced these
	// defaults. When the owning source's effective band or mode no longer
	// matches, the parameters are stale and must be recomputed.
	BandLabel string
	ModeTag   ObsMode
}

// Stale reports whether the parameters were generated for a different
// (band, mode) combination than the one now in effect.
func (p *BackendParams) Stale(bandLabel string, mode ObsMode) bool {
	return p.BandLabel != bandLabel || p.ModeTag != mode
}

// MarkProvenance stamps the parameters with the generating (band, mode).
func (p *BackendParams) MarkProvenance(bandLabel string, mode ObsMode) {
	p.BandLabel = bandLabel
	p.ModeTag = mode
}

// Clone returns a deep copy of the parameters.
func (p *BackendParams) Clone() *BackendParams {
	if p == nil {
		return nil
	}

	out := *p
	out.CenterFreqs = make([]float64, len(p.CenterFreqs))
	copy(out.CenterFreqs, p.CenterFreqs)

	return &out
}
