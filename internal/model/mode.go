// Package model defines the data structures shared by the observing pipeline.
package model

import "fmt"

// ObsMode enumerates the four supported observing modes.
type ObsMode string

const (
	// ModeCoherentFold folds with real-time coherent dedispersion.
	ModeCoherentFold ObsMode = "coherent_fold"
	// ModeCoherentSearch records search data with coherent dedispersion.
	ModeCoherentSearch ObsMode = "coherent_search"
	// ModeFold folds with incoherent dedispersion.
	ModeFold ObsMode = "fold"
	// ModeSearch records search data with incoherent dedispersion.
	ModeSearch ObsMode = "search"
)

// ObsModes lists all observing modes in presentation order.
var ObsModes = []ObsMode{ModeCoherentFold, ModeCoherentSearch, ModeFold, ModeSearch}

// ParseObsMode converts a wire string into an ObsMode.
func ParseObsMode(s string) (ObsMode, error) {
	mode := ObsMode(s)
	if !mode.Valid() {
		return "", fmt.Errorf("unknown observing mode %q", s)
	}

	return mode, nil
}

// Valid reports whether the mode is one of the four known variants.
func (o ObsMode) Valid() bool {
	switch o {
	case ModeCoherentFold, ModeCoherentSearch, ModeFold, ModeSearch:
		return true
	}

	return false
}

// Coherent reports whether the mode uses coherent dedispersion.
func (o ObsMode) Coherent() bool {
	return o == ModeCoherentFold || o == ModeCoherentSearch
}

// Fold reports whether the backend folds data at a known ephemeris.
func (o ObsMode) Fold() bool {
	return o == ModeCoherentFold || o == ModeFold
}

// Label returns the human-readable mode name.
func (o ObsMode) Label() string {
	switch o {
	case ModeCoherentFold:
		return "Coherent Fold"
	case ModeCoherentSearch:
		return "Coherent Search"
	case ModeFold:
		return "Fold"
	case ModeSearch:
		return "Search"
	}

	return string(o)
}

// PolnMode enumerates the two polarization recording modes.
type PolnMode string

const (
	// PolnFullStokes records all four Stokes parameters.
	PolnFullStokes PolnMode = "FULL_STOKES"
	// PolnTotalIntensity records summed intensity only.
	PolnTotalIntensity PolnMode = "TOTAL_INTENSITY"
)

// Display returns the human-readable polarization mode name.
func (p PolnMode) Display() string {
	switch p {
	case PolnFullStokes:
		return "Full Stokes"
	case PolnTotalIntensity:
		return "Total Intensity"
	}

	return string(p)
}

// NumPol returns the number of recorded polarization products.
func (p PolnMode) NumPol() int {
	if p == PolnTotalIntensity {
		return 2
	}

	return 4
}
