package domain

import (
	"context"

	"github.com/ryanslynch/psrsb/internal/adapter"
	"github.com/ryanslynch/psrsb/internal/logging"
	m "github.com/ryanslynch/psrsb/internal/model"
)

// Workflow defines the interface for observing-session operations.
type Workflow interface {
	// LoadSession restores a session from disk. Edited block text is
	// restored as-is; generated text is recovered by Regenerate.
	LoadSession(ctx context.Context, path m.Path) (*m.ObservationModel, error)

	// SaveSession persists the session, including any edited blocks.
	SaveSession(ctx context.Context, path m.Path, obs *m.ObservationModel) error

	// ImportCatalog merges the sources from an observer catalog into the
	// model, skipping names already present, and returns how many were
	// added. A non-nil scanSec is applied to every added source.
	ImportCatalog(ctx context.Context, obs *m.ObservationModel, path m.Path, scanSec *float64) (int, error)

	// LookupPositions fills in coordinates for sources that have none,
	// querying the pulsar catalog by name. It returns how many sources
	// were filled; names the catalog does not know are left untouched.
	LookupPositions(ctx context.Context, cat adapter.PulsarCatalog, obs *m.ObservationModel) (int, error)

	// Validate checks the model is complete enough to compile.
	Validate(obs *m.ObservationModel) error

	// Regenerate resolves backend parameters for every source and
	// recompiles the scheduling blocks, preserving user-edited text.
	Regenerate(ctx context.Context, obs *m.ObservationModel) error

	// WriteBlocks saves every block under dir, regenerating first when the
	// model has none, and returns the paths written.
	WriteBlocks(ctx context.Context, obs *m.ObservationModel, dir m.Path) ([]m.Path, error)
}

type workflow struct {
	store     adapter.SessionStore
	converter adapter.CoordConverter
	blocks    adapter.BlockStore
	log       logging.Logger
}

// NewWorkflow creates a new Workflow instance with the provided adapters.
func NewWorkflow(store adapter.SessionStore, converter adapter.CoordConverter, blocks adapter.BlockStore, log logging.Logger) Workflow {
	return &workflow{
		store:     store,
		converter: converter,
		blocks:    blocks,
		log:       log,
	}
}

func (w *workflow) LoadSession(ctx context.Context, path m.Path) (*m.ObservationModel, error) {
	obs, err := w.store.Load(path)
	if err != nil {
		return nil, err
	}

	w.log.Debug(ctx, "session loaded",
		logging.String("path", string(path)),
		logging.Int("sources", len(obs.Sources)))

	return obs, nil
}

func (w *workflow) SaveSession(ctx context.Context, path m.Path, obs *m.ObservationModel) error {
	if err := w.store.Save(path, obs); err != nil {
		return err
	}

	w.log.Debug(ctx, "session saved",
		logging.String("path", string(path)),
		logging.Int("sources", len(obs.Sources)))

	return nil
}

func (w *workflow) ImportCatalog(ctx context.Context, obs *m.ObservationModel, path m.Path, scanSec *float64) (int, error) {
	parsed, err := adapter.ParseCatalogFile(path)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]bool, len(obs.Sources))
	for _, src := range obs.Sources {
		existing[src.Name] = true
	}

	added := 0

	for _, src := range parsed {
		if existing[src.Name] {
			w.log.Warn(ctx, "skipping duplicate source", logging.String("name", src.Name))
			continue
		}

		if scanSec != nil {
			scan := *scanSec
			src.ScanLengthSec = &scan
		}

		existing[src.Name] = true
		obs.Sources = append(obs.Sources, src)
		added++
	}

	w.log.Info(ctx, "catalog imported",
		logging.String("path", string(path)),
		logging.Int("added", added),
		logging.Int("parsed", len(parsed)))

	return added, nil
}

func (w *workflow) LookupPositions(ctx context.Context, cat adapter.PulsarCatalog, obs *m.ObservationModel) (int, error) {
	var names []string

	for _, src := range obs.Sources {
		if src.Coord1 == "" || src.Coord2 == "" {
			names = append(names, src.Name)
		}
	}

	if len(names) == 0 {
		return 0, nil
	}

	found, err := cat.LookupAll(ctx, names)
	if err != nil {
		return 0, err
	}

	filled := 0

	for i := range obs.Sources {
		src := &obs.Sources[i]
		if src.Coord1 != "" && src.Coord2 != "" {
			continue
		}

		pos, ok := found[src.Name]
		if !ok {
			w.log.Warn(ctx, "source not in pulsar catalog", logging.String("name", src.Name))
			continue
		}

		src.System = m.CoordJ2000
		src.Coord1 = pos.RA
		src.Coord2 = pos.Dec
		filled++
	}

	w.log.Info(ctx, "positions looked up",
		logging.Int("requested", len(names)),
		logging.Int("filled", filled))

	return filled, nil
}

func (w *workflow) Validate(obs *m.ObservationModel) error {
	return ValidateModel(obs)
}

func (w *workflow) Regenerate(ctx context.Context, obs *m.ObservationModel) error {
	if err := EnsureParams(obs); err != nil {
		return err
	}

	blocks, err := Compile(obs, w.converter)
	if err != nil {
		return err
	}

	obs.SetBlocks(blocks)

	w.log.Debug(ctx, "blocks regenerated", logging.Int("blocks", len(blocks)))

	return nil
}

func (w *workflow) WriteBlocks(ctx context.Context, obs *m.ObservationModel, dir m.Path) ([]m.Path, error) {
	if len(obs.Blocks) == 0 {
		if err := w.Regenerate(ctx, obs); err != nil {
			return nil, err
		}
	}

	paths := make([]m.Path, 0, len(obs.Blocks))

	for _, b := range obs.Blocks {
		path, err := w.blocks.Write(dir, b)
		if err != nil {
			return paths, err
		}

		w.log.Debug(ctx, "block written",
			logging.String("label", b.Label),
			logging.String("path", string(path)))

		paths = append(paths, path)
	}

	w.log.Info(ctx, "blocks written",
		logging.String("dir", string(dir)),
		logging.Int("count", len(paths)))

	return paths, nil
}
