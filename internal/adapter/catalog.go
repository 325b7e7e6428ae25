// Package adapter contains filesystem and coordinate adapters for the psrsb CLI.
package adapter

import (
	"bufio"
	"io"
	"os"
	"strings"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// catalogColumns resolves the head directive of a source catalog into field
// indices. Galactic columns take priority over equatorial ones.
type catalogColumns struct {
	name   int
	coord1 int
	coord2 int
	system m.CoordSystem
	width  int
}

// ParseCatalogFile reads an observer catalog from disk.
func ParseCatalogFile(path m.Path) ([]m.Source, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	return ParseCatalog(f)
}

// ParseCatalog reads sources from an observer catalog. Comment and blank
// lines are ignored. Directive lines of the form `key = value` configure the
// parse until a head directive names the columns and opens the data region;
// after that every line is a whitespace-delimited row. Rows shorter than the
// named columns are skipped.
func ParseCatalog(r io.Reader) ([]m.Source, error) {
	var (
		sources []m.Source
		cols    *catalogColumns
	)

	coordmode := m.CoordJ2000
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if cols == nil {
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}

			key = strings.ToLower(strings.TrimSpace(key))
			value = strings.TrimSpace(value)

			switch key {
			case "coordmode":
				coordmode = parseCoordMode(value)
			case "head":
				resolved, err := resolveColumns(value, coordmode)
				if err != nil {
					return nil, err
				}

				cols = resolved
			}

			continue
		}

		fields := strings.Fields(line)
		if len(fields) < cols.width {
			continue
		}

		sources = append(sources, m.Source{
			Name:   fields[cols.name],
			System: cols.system,
			Coord1: fields[cols.coord1],
			Coord2: fields[cols.coord2],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if cols == nil {
		return nil, m.Invalid("catalog", "no head directive naming the columns")
	}

	return sources, nil
}

// parseCoordMode maps a coordmode directive value onto a coordinate system.
// Unrecognized values fall back to J2000.
func parseCoordMode(value string) m.CoordSystem {
	switch strings.ToUpper(value) {
	case "GALACTIC":
		return m.CoordGalactic
	case "B1950":
		return m.CoordB1950
	default:
		return m.CoordJ2000
	}
}

func resolveColumns(head string, coordmode m.CoordSystem) (*catalogColumns, error) {
	index := make(map[string]int)

	names := strings.Fields(strings.ToUpper(head))
	for i, n := range names {
		index[n] = i
	}

	name, ok := index["NAME"]
	if !ok {
		return nil, m.Invalid("catalog", "head is missing the NAME column")
	}

	cols := &catalogColumns{name: name}

	glon, hasGlon := index["GLON"]
	glat, hasGlat := index["GLAT"]
	ra, hasRA := index["RA"]
	dec, hasDec := index["DEC"]

	switch {
	case hasGlon && hasGlat:
		cols.coord1, cols.coord2 = glon, glat
		cols.system = m.CoordGalactic
	case hasRA && hasDec:
		cols.coord1, cols.coord2 = ra, dec
		cols.system = coordmode
	default:
		return nil, m.Invalid("catalog", "head must name RA/DEC or GLON/GLAT columns")
	}

	cols.width = cols.name + 1
	if cols.coord1 >= cols.width {
		cols.width = cols.coord1 + 1
	}

	if cols.coord2 >= cols.width {
		cols.width = cols.coord2 + 1
	}

	return cols, nil
}
