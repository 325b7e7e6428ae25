package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveBandAndMode(t *testing.T) {
	obs := NewObservationModel()
	obs.GlobalBand = "820 MHz"
	obs.GlobalMode = ModeSearch

	src := Source{Name: "J0030+0451", Band: "L-band", Mode: ModeCoherentFold}

	assert.Equal(t, "820 MHz", obs.EffectiveBand(src))
	assert.Equal(t, ModeSearch, obs.EffectiveMode(src))

	obs.PerSourceConfig = true

	assert.Equal(t, "L-band", obs.EffectiveBand(src))
	assert.Equal(t, ModeCoherentFold, obs.EffectiveMode(src))

	blank := Source{Name: "J0613-0200"}
	assert.Equal(t, "820 MHz", obs.EffectiveBand(blank))
	assert.Equal(t, ModeSearch, obs.EffectiveMode(blank))
}

func TestPolCalEnabled(t *testing.T) {
	obs := NewObservationModel()

	assert.False(t, obs.PolCalEnabled(Source{}))
	assert.True(t, obs.PolCalEnabled(Source{PolCal: true}))

	obs.IncludePolCal = true
	assert.True(t, obs.PolCalEnabled(Source{}))
}

func TestSetBlocks_PreservesEdits(t *testing.T) {
	obs := NewObservationModel()
	obs.SetBlocks([]Block{
		{Label: "L-band Pulsars", Generated: "v1"},
		{Label: "L-band Flux Cal", Generated: "f1"},
	})

	require.NoError(t, obs.EditBlock("L-band Pulsars", "my edit"))

	obs.SetBlocks([]Block{
		{Label: "L-band Pulsars", Generated: "v2"},
		{Label: "820 MHz Pulsars", Generated: "w1"},
	})

	edited, ok := obs.Block("L-band Pulsars")
	require.True(t, ok)
	assert.Equal(t, "my edit", edited.Text)
	assert.Equal(t, "v2", edited.Generated)
	assert.True(t, edited.Edited)

	_, ok = obs.Block("L-band Flux Cal")
	assert.False(t, ok, "labels absent from the new set are dropped")

	assert.Equal(t, []string{"L-band Pulsars", "820 MHz Pulsars"}, obs.BlockLabels())
}

func TestResetBlock_RestoresGenerated(t *testing.T) {
	obs := NewObservationModel()
	obs.SetBlocks([]Block{{Label: "L-band Pulsars", Generated: "v1"}})

	require.NoError(t, obs.EditBlock("L-band Pulsars", "edited"))
	require.NoError(t, obs.ResetBlock("L-band Pulsars"))

	b, ok := obs.Block("L-band Pulsars")
	require.True(t, ok)
	assert.Equal(t, "v1", b.Text)
	assert.False(t, b.Edited)

	assert.Error(t, obs.ResetBlock("missing"))
	assert.Error(t, obs.EditBlock("missing", "x"))
}

func TestEditBlock_SameTextIsNotAnEdit(t *testing.T) {
	obs := NewObservationModel()
	obs.SetBlocks([]Block{{Label: "L-band Pulsars", Generated: "v1"}})

	require.NoError(t, obs.EditBlock("L-band Pulsars", "v1"))

	b, _ := obs.Block("L-band Pulsars")
	assert.False(t, b.Edited)
}

func TestObsModeQueries(t *testing.T) {
	cases := []struct {
		mode     ObsMode
		coherent bool
		fold     bool
		label    string
	}{
		{ModeCoherentFold, true, true, "Coherent Fold"},
		{ModeCoherentSearch, true, false, "Coherent Search"},
		{ModeFold, false, true, "Fold"},
		{ModeSearch, false, false, "Search"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.coherent, tc.mode.Coherent(), tc.mode)
		assert.Equal(t, tc.fold, tc.mode.Fold(), tc.mode)
		assert.Equal(t, tc.label, tc.mode.Label(), tc.mode)
		assert.True(t, tc.mode.Valid())
	}

	_, err := ParseObsMode("folded")
	assert.Error(t, err)

	mode, err := ParseObsMode("coherent_search")
	require.NoError(t, err)
	assert.Equal(t, ModeCoherentSearch, mode)
}

func TestBackendParamsProvenance(t *testing.T) {
	p := &BackendParams{NumChan: 512}
	p.MarkProvenance("L-band", ModeCoherentFold)

	assert.False(t, p.Stale("L-band", ModeCoherentFold))
	assert.True(t, p.Stale("820 MHz", ModeCoherentFold))
	assert.True(t, p.Stale("L-band", ModeSearch))
}

func TestBackendParamsClone(t *testing.T) {
	p := &BackendParams{NumChan: 512, CenterFreqs: []float64{1500}}
	c := p.Clone()

	c.CenterFreqs[0] = 820
	assert.Equal(t, 1500.0, p.CenterFreqs[0])

	var nilParams *BackendParams

	assert.Nil(t, nilParams.Clone())
}

func TestFreqBandWindowCentersAndDescribe(t *testing.T) {
	single := FreqBand{Label: "L-band", Receiver: "Rcvr1_2", Bandwidth: 800, CenterFreq: 1500}
	assert.Equal(t, []float64{1500}, single.WindowCenters())
	assert.Equal(t, "Rcvr1_2  |  1500 MHz  |  800 MHz BW", single.Describe())

	multi := FreqBand{
		Label:     "UWBR",
		Receiver:  "Rcvr_2500",
		Bandwidth: 1500,
		Windows:   []float64{1225, 2350, 3475},
	}
	assert.Equal(t, []float64{1225, 2350, 3475}, multi.WindowCenters())
	assert.Equal(t, "Rcvr_2500  |  3 windows @ 1225 MHz, 2350 MHz, 3475 MHz  |  1500 MHz BW each", multi.Describe())
}
