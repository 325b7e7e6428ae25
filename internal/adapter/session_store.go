package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// SessionStore persists and retrieves observing sessions.
type SessionStore interface {
	Load(path m.Path) (*m.ObservationModel, error)
	Save(path m.Path, obs *m.ObservationModel) error
}

type yamlSessionStore struct{}

// NewSessionStore constructs a SessionStore backed by YAML files.
func NewSessionStore() SessionStore {
	return &yamlSessionStore{}
}

// sessionFile is the on-disk session schema. Resolved backend parameters are
// persisted alongside each source so that manual overrides survive a
// round-trip; generated block text is not stored, only user edits.
type sessionFile struct {
	Band            string         `yaml:"band"`
	Mode            string         `yaml:"mode"`
	PerSourceConfig bool           `yaml:"per_source_config,omitempty"`
	IncludePolCal   bool           `yaml:"include_pol_cal,omitempty"`
	FluxCal         fluxCalSection `yaml:"flux_cal,omitempty"`
	Sources         []sourceEntry  `yaml:"sources"`
	EditedBlocks    []editedBlock  `yaml:"edited_blocks,omitempty"`
}

type fluxCalSection struct {
	Include bool    `yaml:"include,omitempty"`
	Source  string  `yaml:"source,omitempty"`
	ScanSec float64 `yaml:"scan_length_sec,omitempty"`
}

type sourceEntry struct {
	Name    string       `yaml:"name"`
	System  string       `yaml:"system,omitempty"`
	Coord1  string       `yaml:"coord1,omitempty"`
	Coord2  string       `yaml:"coord2,omitempty"`
	ScanSec *float64     `yaml:"scan_length_sec,omitempty"`
	Band    string       `yaml:"band,omitempty"`
	Mode    string       `yaml:"mode,omitempty"`
	Parfile string       `yaml:"parfile,omitempty"`
	DM      *float64     `yaml:"dm,omitempty"`
	PolCal  bool         `yaml:"pol_cal,omitempty"`
	Params  *paramsEntry `yaml:"params,omitempty"`
}

type paramsEntry struct {
	NumChan     int       `yaml:"numchan"`
	OutBits     int       `yaml:"outbits"`
	Scale       int       `yaml:"scale"`
	Poln        string    `yaml:"polnmode"`
	TintSec     float64   `yaml:"tint_sec"`
	FoldBins    int       `yaml:"fold_bins,omitempty"`
	FoldDumpSec float64   `yaml:"fold_dump_sec,omitempty"`
	CenterFreqs []float64 `yaml:"center_freqs,flow"`
	BandLabel   string    `yaml:"band_label,omitempty"`
	ModeTag     string    `yaml:"mode_tag,omitempty"`
}

type editedBlock struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

func (s *yamlSessionStore) Load(path m.Path) (*m.ObservationModel, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	var file sessionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}

	obs := m.NewObservationModel()

	if file.Band != "" {
		obs.GlobalBand = file.Band
	}

	if file.Mode != "" {
		mode, err := m.ParseObsMode(file.Mode)
		if err != nil {
			return nil, m.Invalid("mode", err.Error())
		}

		obs.GlobalMode = mode
	}

	obs.PerSourceConfig = file.PerSourceConfig
	obs.IncludePolCal = file.IncludePolCal
	obs.IncludeFluxCal = file.FluxCal.Include
	obs.FluxCalSource = file.FluxCal.Source

	if file.FluxCal.ScanSec > 0 {
		obs.FluxCalScanSec = file.FluxCal.ScanSec
	}

	for _, entry := range file.Sources {
		src, err := entry.toSource()
		if err != nil {
			return nil, err
		}

		obs.Sources = append(obs.Sources, src)
	}

	for _, eb := range file.EditedBlocks {
		obs.Blocks = append(obs.Blocks, m.Block{Label: eb.Label, Text: eb.Text, Edited: true})
	}

	return obs, nil
}

func (s *yamlSessionStore) Save(path m.Path, obs *m.ObservationModel) error {
	file := sessionFile{
		Band:            obs.GlobalBand,
		Mode:            string(obs.GlobalMode),
		PerSourceConfig: obs.PerSourceConfig,
		IncludePolCal:   obs.IncludePolCal,
		FluxCal: fluxCalSection{
			Include: obs.IncludeFluxCal,
			Source:  obs.FluxCalSource,
			ScanSec: obs.FluxCalScanSec,
		},
	}

	for _, src := range obs.Sources {
		file.Sources = append(file.Sources, toEntry(src))
	}

	for _, b := range obs.Blocks {
		if b.Edited {
			file.EditedBlocks = append(file.EditedBlocks, editedBlock{Label: b.Label, Text: b.Text})
		}
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return os.WriteFile(string(path), data, 0o644)
}

func (e sourceEntry) toSource() (m.Source, error) {
	src := m.Source{
		Name:    e.Name,
		Coord1:  e.Coord1,
		Coord2:  e.Coord2,
		Band:    e.Band,
		Parfile: e.Parfile,
		PolCal:  e.PolCal,
	}

	src.ScanLengthSec = e.ScanSec
	src.DM = e.DM

	switch sys := m.CoordSystem(e.System); sys {
	case "":
		src.System = m.CoordJ2000
	case m.CoordJ2000, m.CoordB1950, m.CoordGalactic:
		src.System = sys
	default:
		return m.Source{}, m.InvalidFor(e.Name, "system", "unknown coordinate system "+e.System)
	}

	if e.Mode != "" {
		mode, err := m.ParseObsMode(e.Mode)
		if err != nil {
			return m.Source{}, m.InvalidFor(e.Name, "mode", err.Error())
		}

		src.Mode = mode
	}

	if e.Params != nil {
		src.Params = &m.BackendParams{
			NumChan:     e.Params.NumChan,
			OutBits:     e.Params.OutBits,
			Scale:       e.Params.Scale,
			Poln:        m.PolnMode(e.Params.Poln),
			TintSec:     e.Params.TintSec,
			FoldBins:    e.Params.FoldBins,
			FoldDumpSec: e.Params.FoldDumpSec,
			CenterFreqs: e.Params.CenterFreqs,
			BandLabel:   e.Params.BandLabel,
			ModeTag:     m.ObsMode(e.Params.ModeTag),
		}
	}

	return src, nil
}

func toEntry(src m.Source) sourceEntry {
	entry := sourceEntry{
		Name:    src.Name,
		System:  string(src.System),
		Coord1:  src.Coord1,
		Coord2:  src.Coord2,
		ScanSec: src.ScanLengthSec,
		Band:    src.Band,
		Mode:    string(src.Mode),
		Parfile: src.Parfile,
		DM:      src.DM,
		PolCal:  src.PolCal,
	}

	if src.Params != nil {
		entry.Params = &paramsEntry{
			NumChan:     src.Params.NumChan,
			OutBits:     src.Params.OutBits,
			Scale:       src.Params.Scale,
			Poln:        string(src.Params.Poln),
			TintSec:     src.Params.TintSec,
			FoldBins:    src.Params.FoldBins,
			FoldDumpSec: src.Params.FoldDumpSec,
			CenterFreqs: src.Params.CenterFreqs,
			BandLabel:   src.Params.BandLabel,
			ModeTag:     string(src.Params.ModeTag),
		}
	}

	return entry
}
