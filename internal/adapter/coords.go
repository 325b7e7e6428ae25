package adapter

import "math"

// J2000 position of the north galactic pole and the galactic longitude of
// the north celestial pole (IAU 1958 system, J2000 values).
const (
	raNGPDeg  = 192.859508
	decNGPDeg = 27.128336
	lNCPDeg   = 122.932
)

// CoordConverter converts galactic coordinates into the equatorial frame.
type CoordConverter interface {
	// GalacticToEquatorial maps galactic longitude/latitude in degrees to
	// right ascension in hours and declination in degrees (J2000).
	GalacticToEquatorial(lDeg, bDeg float64) (raHours, decDeg float64)
}

type j2000Converter struct{}

// NewCoordConverter constructs a CoordConverter using the standard J2000
// rotation.
func NewCoordConverter() CoordConverter {
	return &j2000Converter{}
}

func (c *j2000Converter) GalacticToEquatorial(lDeg, bDeg float64) (float64, float64) {
	l := lDeg * math.Pi / 180
	b := bDeg * math.Pi / 180
	decNGP := decNGPDeg * math.Pi / 180
	lNCP := lNCPDeg * math.Pi / 180

	sinDec := math.Sin(decNGP)*math.Sin(b) + math.Cos(decNGP)*math.Cos(b)*math.Cos(lNCP-l)
	dec := math.Asin(sinDec)

	y := math.Cos(b) * math.Sin(lNCP-l)
	x := math.Cos(decNGP)*math.Sin(b) - math.Sin(decNGP)*math.Cos(b)*math.Cos(lNCP-l)

	raDeg := raNGPDeg + math.Atan2(y, x)*180/math.Pi

	raDeg = math.Mod(raDeg, 360)
	if raDeg < 0 {
		raDeg += 360
	}

	return raDeg / 15, dec * 180 / math.Pi
}
