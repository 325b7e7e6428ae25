package model

import "fmt"

// DefaultScanSec is the track duration used when a source has no scan length.
const DefaultScanSec = 120.0

// DefaultFluxCalScanSec is the default on/off scan duration for flux
// calibration.
const DefaultFluxCalScanSec = 95.0

// ObservationModel is the single mutable aggregate threaded through the
// pipeline: sources and global settings flow into the resolver and the
// calibrator matcher, and their outputs flow into the compiler, which appends
// to Blocks.
type ObservationModel struct {
	Sources []Source

	GlobalBand      string
	GlobalMode      ObsMode
	PerSourceConfig bool
	IncludePolCal   bool

	IncludeFluxCal bool
	FluxCalSource  string
	FluxCalScanSec float64

	// Blocks maps generated scheduling-block labels to their text, in
	// generation order. It is regenerated wholesale by the compiler;
	// user-edited entries keep their text until explicitly reset.
	Blocks []Block
}

// NewObservationModel returns a model with the standard global defaults.
func NewObservationModel() *ObservationModel {
	return &ObservationModel{
		GlobalBand:     "L-band",
		GlobalMode:     ModeCoherentFold,
		FluxCalScanSec: DefaultFluxCalScanSec,
	}
}

// EffectiveBand returns the band label in effect for the source.
func (o *ObservationModel) EffectiveBand(src Source) string {
	if o.PerSourceConfig && src.Band != "" {
		return src.Band
	}

	return o.GlobalBand
}

// EffectiveMode returns the observing mode in effect for the source.
func (o *ObservationModel) EffectiveMode(src Source) ObsMode {
	if o.PerSourceConfig && src.Mode != "" {
		return src.Mode
	}

	return o.GlobalMode
}

// PolCalEnabled reports whether the source gets a polarization-cal sub-scan.
func (o *ObservationModel) PolCalEnabled(src Source) bool {
	return o.IncludePolCal || src.PolCal
}

// SetBlocks replaces the block mapping with freshly generated entries.
// Entries whose label already exists and carries user edits keep their
// edited text; everything else adopts the new generated text. Labels not
// present in the new set are dropped.
func (o *ObservationModel) SetBlocks(generated []Block) {
	prior := make(map[string]Block, len(o.Blocks))
	for _, b := range o.Blocks {
		prior[b.Label] = b
	}

	next := make([]Block, 0, len(generated))

	for _, g := range generated {
		entry := Block{Label: g.Label, Generated: g.Generated, Text: g.Generated}

		if old, ok := prior[g.Label]; ok && old.Edited {
			entry.Text = old.Text
			entry.Edited = true
		}

		next = append(next, entry)
	}

	o.Blocks = next
}

// Block returns the entry with the given label.
func (o *ObservationModel) Block(label string) (Block, bool) {
	for _, b := range o.Blocks {
		if b.Label == label {
			return b, true
		}
	}

	return Block{}, false
}

// BlockLabels returns the labels in generation order.
func (o *ObservationModel) BlockLabels() []string {
	labels := make([]string, 0, len(o.Blocks))
	for _, b := range o.Blocks {
		labels = append(labels, b.Label)
	}

	return labels
}

// EditBlock replaces the text of the labeled entry, marking it edited when
// the text differs from the generated default.
func (o *ObservationModel) EditBlock(label, text string) error {
	for i := range o.Blocks {
		if o.Blocks[i].Label != label {
			continue
		}

		o.Blocks[i].Text = text
		o.Blocks[i].Edited = text != o.Blocks[i].Generated

		return nil
	}

	return fmt.Errorf("no scheduling block labeled %q", label)
}

// ResetBlock restores the labeled entry to its generated default.
func (o *ObservationModel) ResetBlock(label string) error {
	for i := range o.Blocks {
		if o.Blocks[i].Label != label {
			continue
		}

		o.Blocks[i].Text = o.Blocks[i].Generated
		o.Blocks[i].Edited = false

		return nil
	}

	return fmt.Errorf("no scheduling block labeled %q", label)
}
