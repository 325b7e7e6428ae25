package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FreqBand describes a receiver/frequency configuration.
//
// Exactly one of CenterFreq and Windows is set: single-window bands carry
// CenterFreq, multi-window bands carry the ordered Windows list.
type FreqBand struct {
	Label      string
	Receiver   string
	Bandwidth  int // MHz per spectral window
	CenterFreq float64
	Windows    []float64
}

// WindowCenters returns the effective list of window center frequencies.
func (b FreqBand) WindowCenters() []float64 {
	if len(b.Windows) > 0 {
		out := make([]float64, len(b.Windows))
		copy(out, b.Windows)

		return out
	}

	return []float64{b.CenterFreq}
}

// Describe builds a one-line human summary of the band.
func (b FreqBand) Describe() string {
	if len(b.Windows) > 0 {
		parts := make([]string, len(b.Windows))
		for i, w := range b.Windows {
			parts[i] = strconv.FormatFloat(w, 'g', -1, 64) + " MHz"
		}

		return fmt.Sprintf("%s  |  %d windows @ %s  |  %d MHz BW each",
			b.Receiver, len(b.Windows), strings.Join(parts, ", "), b.Bandwidth)
	}

	return fmt.Sprintf("%s  |  %s MHz  |  %d MHz BW",
		b.Receiver, strconv.FormatFloat(b.CenterFreq, 'g', -1, 64), b.Bandwidth)
}
