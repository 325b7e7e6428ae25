package domain

import (
	"math"
	"strings"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// FluxCalibrators is the calibrator catalog in fixed RA order. Polynomial
// entries carry published log-frequency coefficients; 3C161 and 3C353 use
// anchored power laws instead. Nearest-neighbor ties resolve to the earlier
// entry, so the order is part of the contract.
var FluxCalibrators = []m.FluxCalibrator{
	{
		Name: "3C48", RAHours: 1.6281, DecDeg: 33.1598,
		PolyCoeffs: []float64{1.3253, -0.7553, -0.1914, 0.0498},
	},
	{
		Name: "3C123", RAHours: 4.6179, DecDeg: 29.6705,
		PolyCoeffs: []float64{1.8017, -0.7884, -0.1035, -0.0248, 0.0090},
	},
	{
		Name: "3C147", RAHours: 5.7100, DecDeg: 49.8520,
		PolyCoeffs: []float64{1.4516, -0.6961, -0.2007, 0.0640, -0.0464, 0.0289},
	},
	{
		Name: "3C161", RAHours: 6.4528, DecDeg: -5.8847,
		Power: &m.PowerLaw{RefFreqMHz: 1400, RefFluxJy: 18.5, SpectralIndex: -0.90},
	},
	{
		Name: "3C196", RAHours: 8.2267, DecDeg: 48.2173,
		PolyCoeffs: []float64{1.2872, -0.8530, -0.1534, -0.0200, 0.0201},
	},
	{
		Name: "3C286", RAHours: 13.5190, DecDeg: 30.5092,
		PolyCoeffs: []float64{1.2481, -0.4507, -0.1798, 0.0357},
	},
	{
		Name: "3C295", RAHours: 14.1890, DecDeg: 52.2026,
		PolyCoeffs: []float64{1.4701, -0.7658, -0.2780, -0.0347, 0.0399},
	},
	{
		Name: "3C353", RAHours: 17.3412, DecDeg: -0.9798,
		Power: &m.PowerLaw{RefFreqMHz: 1400, RefFluxJy: 57.3, SpectralIndex: -0.71},
	},
}

// FluxAt predicts the calibrator's flux density in Jy at a frequency in MHz.
// Polynomial models evaluate 10^(sum c_i * log10(f_GHz)^i); power laws scale
// the anchored reference flux. Non-positive frequencies yield 0.
func FluxAt(cal m.FluxCalibrator, freqMHz float64) float64 {
	if freqMHz <= 0 {
		return 0
	}

	if len(cal.PolyCoeffs) > 0 {
		logf := math.Log10(freqMHz / 1000)

		var sum float64
		for i, c := range cal.PolyCoeffs {
			sum += c * math.Pow(logf, float64(i))
		}

		return math.Pow(10, sum)
	}

	if cal.Power != nil {
		return cal.Power.RefFluxJy * math.Pow(freqMHz/cal.Power.RefFreqMHz, cal.Power.SpectralIndex)
	}

	return 0
}

// FindNearest returns the calibrator closest to the given equatorial
// position. Only a strictly smaller separation displaces the current best,
// so the first catalog entry wins ties.
func FindNearest(raHours, decDeg float64) m.FluxCalibrator {
	best := FluxCalibrators[0]
	bestSep := AngularSeparation(raHours, decDeg, best.RAHours, best.DecDeg)

	for _, cal := range FluxCalibrators[1:] {
		if sep := AngularSeparation(raHours, decDeg, cal.RAHours, cal.DecDeg); sep < bestSep {
			best = cal
			bestSep = sep
		}
	}

	return best
}

// CalibratorByName looks up a calibrator case-insensitively.
func CalibratorByName(name string) (m.FluxCalibrator, bool) {
	for _, cal := range FluxCalibrators {
		if strings.EqualFold(cal.Name, name) {
			return cal, true
		}
	}

	return m.FluxCalibrator{}, false
}

// CalibratorNames returns the calibrator names in catalog order.
func CalibratorNames() []string {
	names := make([]string, len(FluxCalibrators))
	for i, cal := range FluxCalibrators {
		names[i] = cal.Name
	}

	return names
}
