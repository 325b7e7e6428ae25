package adapter

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// lookupConcurrency bounds parallel catalog lookups in LookupAll.
const lookupConcurrency = 4

// PulsarCatalog resolves pulsar names to equatorial positions.
type PulsarCatalog interface {
	// Lookup returns the position recorded for the named pulsar. The found
	// flag is false when the catalog has no entry under any recognized name
	// variant.
	Lookup(ctx context.Context, name string) (m.SkyPosition, bool, error)

	// LookupAll resolves every name it can and returns the positions keyed
	// by the queried name. Names without an entry are simply absent from
	// the result.
	LookupAll(ctx context.Context, names []string) (map[string]m.SkyPosition, error)
}

// psrcatFile reads a psrcat-format database: records separated by @-- lines,
// each record a sequence of "KEY VALUE ..." lines. Only the PSRJ, PSRB, RAJ,
// and DECJ keys are consulted. The file is parsed once on first use.
type psrcatFile struct {
	db m.Path

	once  sync.Once
	err   error
	index map[string]m.SkyPosition
}

// NewPulsarCatalog constructs a PulsarCatalog over a psrcat database file.
func NewPulsarCatalog(db m.Path) PulsarCatalog {
	return &psrcatFile{db: db}
}

func (p *psrcatFile) Lookup(ctx context.Context, name string) (m.SkyPosition, bool, error) {
	if err := ctx.Err(); err != nil {
		return m.SkyPosition{}, false, err
	}

	p.once.Do(p.load)

	if p.err != nil {
		return m.SkyPosition{}, false, p.err
	}

	for _, variant := range nameVariants(name) {
		if pos, ok := p.index[variant]; ok {
			return pos, true, nil
		}
	}

	return m.SkyPosition{}, false, nil
}

func (p *psrcatFile) LookupAll(ctx context.Context, names []string) (map[string]m.SkyPosition, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	var mu sync.Mutex

	found := make(map[string]m.SkyPosition, len(names))

	for _, name := range names {
		name := name
		g.Go(func() error {
			pos, ok, err := p.Lookup(ctx, name)
			if err != nil {
				return err
			}

			if !ok {
				return nil
			}

			mu.Lock()
			found[name] = pos
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return found, nil
}

func (p *psrcatFile) load() {
	f, err := os.Open(string(p.db))
	if err != nil {
		p.err = fmt.Errorf("open pulsar catalog: %w", err)
		return
	}

	defer func() {
		_ = f.Close()
	}()

	p.index = make(map[string]m.SkyPosition)

	var psrj, psrb, raj, decj string

	flush := func() {
		if raj != "" && decj != "" {
			pos := m.SkyPosition{RA: raj, Dec: decj}
			if psrj != "" {
				p.index[strings.ToUpper(psrj)] = pos
			}

			if psrb != "" {
				p.index[strings.ToUpper(psrb)] = pos
			}
		}

		psrj, psrb, raj, decj = "", "", "", ""
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "@-") {
			flush()
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "PSRJ":
			psrj = fields[1]
		case "PSRB":
			psrb = fields[1]
		case "RAJ":
			raj = fields[1]
		case "DECJ":
			decj = fields[1]
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		p.err = fmt.Errorf("read pulsar catalog: %w", err)
		p.index = nil
	}
}

// nameVariants expands a query into the catalog names it may be filed under:
// as given, without a PSR prefix, and with a J or B prefix when the query
// starts with a digit.
func nameVariants(name string) []string {
	base := strings.ToUpper(strings.TrimSpace(name))
	base = strings.TrimSpace(strings.TrimPrefix(base, "PSR"))

	variants := []string{base}
	if len(base) > 0 && base[0] >= '0' && base[0] <= '9' {
		variants = append(variants, "J"+base, "B"+base)
	}

	return variants
}
