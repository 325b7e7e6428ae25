// Package domain contains the backend parameter resolver, flux calibrator
// matching, and the scheduling-block compiler.
package domain

import (
	m "github.com/ryanslynch/psrsb/internal/model"
)

// FreqBands lists the observable bands in catalog order. Single-window bands
// carry a center frequency; multi-window bands carry the window list.
var FreqBands = []m.FreqBand{
	{Label: "350 MHz", Receiver: "Rcvr_342", Bandwidth: 100, CenterFreq: 350},
	{Label: "820 MHz", Receiver: "Rcvr_800", Bandwidth: 200, CenterFreq: 820},
	{Label: "L-band", Receiver: "Rcvr1_2", Bandwidth: 800, CenterFreq: 1500},
	{Label: "S-band", Receiver: "Rcvr2_3", Bandwidth: 1500, CenterFreq: 2165},
	{Label: "UWBR", Receiver: "Rcvr_2500", Bandwidth: 1500, Windows: []float64{1225, 2350, 3475}},
	{Label: "C-band", Receiver: "Rcvr4_6", Bandwidth: 1500, Windows: []float64{4312.5, 5437.5, 6562.5, 7687.5}},
	{Label: "X-band", Receiver: "Rcvr8_10", Bandwidth: 1500, Windows: []float64{8250, 9375, 10500, 11625}},
}

// BandNames returns the band labels in catalog order.
func BandNames() []string {
	names := make([]string, len(FreqBands))
	for i, band := range FreqBands {
		names[i] = band.Label
	}

	return names
}

// BandByLabel looks up a band by its label.
func BandByLabel(label string) (m.FreqBand, bool) {
	for _, band := range FreqBands {
		if band.Label == label {
			return band, true
		}
	}

	return m.FreqBand{}, false
}
