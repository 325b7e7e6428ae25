package model

// Path represents a file system path.
type Path string

// CoordSystem identifies the coordinate frame of a source position.
type CoordSystem string

const (
	// CoordJ2000 is the modern equatorial frame (RA/Dec, epoch J2000).
	CoordJ2000 CoordSystem = "J2000"

	// CoordB1950 is the historical equatorial frame (RA/Dec, epoch B1950).
	CoordB1950 CoordSystem = "B1950"

	// CoordGalactic uses galactic longitude/latitude in decimal degrees.
	CoordGalactic CoordSystem = "Galactic"
)

// Source represents one observing target.
//
// Coord1 and Coord2 hold the coordinate strings verbatim as entered or
// imported; they are parsed on demand and echoed unchanged into generated
// catalog blocks.
type Source struct {
	Name   string
	System CoordSystem
	Coord1 string
	Coord2 string

	// ScanLengthSec is nil until the observer sets a scan duration.
	ScanLengthSec *float64

	// Per-source overrides, honored when ObservationModel.PerSourceConfig
	// is enabled. Empty Band/Mode fall back to the global defaults.
	Band    string
	Mode    ObsMode
	Parfile string
	DM      *float64
	PolCal  bool

	// Params holds the resolved backend parameters owned by this source.
	Params *BackendParams
}

// SkyPosition is a looked-up equatorial position as sexagesimal strings.
type SkyPosition struct {
	RA  string
	Dec string
}
