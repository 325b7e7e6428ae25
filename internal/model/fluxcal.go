package model

// PowerLaw is a flux model anchored at a reference frequency.
type PowerLaw struct {
	RefFreqMHz    float64
	RefFluxJy     float64
	SpectralIndex float64
}

// FluxCalibrator is a source of known flux density used for amplitude
// calibration. Exactly one of PolyCoeffs and Power is populated: PolyCoeffs
// are the coefficients of a polynomial in log10 of the frequency in GHz,
// Power is a power law anchored at a reference frequency.
type FluxCalibrator struct {
	Name    string
	RAHours float64
	DecDeg  float64

	PolyCoeffs []float64
	Power      *PowerLaw
}
