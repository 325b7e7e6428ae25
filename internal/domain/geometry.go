package domain

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/ryanslynch/psrsb/internal/adapter"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// AngularSeparation returns the approximate angular distance in degrees
// between two equatorial positions. The right-ascension difference is wrapped
// to the shorter arc and foreshortened by the cosine of the mean declination,
// then combined with the declination difference as a planar Euclidean norm.
// Good enough for catalog-proximity ranking, not for astrometry.
func AngularSeparation(ra1Hours, dec1Deg, ra2Hours, dec2Deg float64) float64 {
	dRA := ra1Hours - ra2Hours
	if dRA > 12 {
		dRA -= 24
	} else if dRA < -12 {
		dRA += 24
	}

	meanDec := (dec1Deg + dec2Deg) / 2
	dRADeg := dRA * 15 * math.Cos(meanDec*math.Pi/180)
	dDec := dec1Deg - dec2Deg

	return math.Sqrt(dRADeg*dRADeg + dDec*dDec)
}

// MeanPosition returns the mean equatorial position of the sources: the
// declination is an arithmetic mean, the right ascension a circular mean so
// positions straddling 0h do not average to 12h. Sources whose coordinates
// do not parse are skipped; galactic sources are converted through conv.
// When nothing parses the degenerate (0, 0) is returned and callers must
// treat it as "no informative position".
func MeanPosition(sources []m.Source, conv adapter.CoordConverter) (raHours, decDeg float64) {
	var raRad []float64

	var decSum float64

	for _, src := range sources {
		ra, dec, ok := equatorialOf(src, conv)
		if !ok {
			continue
		}

		raRad = append(raRad, ra*15*math.Pi/180)
		decSum += dec
	}

	if len(raRad) == 0 {
		return 0, 0
	}

	mean := stat.CircularMean(raRad, nil)
	if mean < 0 {
		mean += 2 * math.Pi
	}

	return mean * 180 / math.Pi / 15, decSum / float64(len(raRad))
}

// equatorialOf parses a source position into (RA hours, Dec degrees).
func equatorialOf(src m.Source, conv adapter.CoordConverter) (raHours, decDeg float64, ok bool) {
	if src.System == m.CoordGalactic {
		l, err := strconv.ParseFloat(src.Coord1, 64)
		if err != nil {
			return 0, 0, false
		}

		b, err := strconv.ParseFloat(src.Coord2, 64)
		if err != nil {
			return 0, 0, false
		}

		raHours, decDeg = conv.GalacticToEquatorial(l, b)

		return raHours, decDeg, true
	}

	raHours, err := ParseSexagesimal(src.Coord1)
	if err != nil {
		return 0, 0, false
	}

	decDeg, err = ParseSexagesimal(src.Coord2)
	if err != nil {
		return 0, 0, false
	}

	return raHours, decDeg, true
}
