// Package odbpcb is the public entry point for parsing an ODB++ PCB
// fabrication archive into a PcbModel and projecting it to JSON.
//
// Parser mirrors the teacher's Parser/ParseOptions pattern: a thin
// interface over a fixed pipeline, configured by a plain option struct
// rather than a config file or environment variables.
package odbpcb

import (
	"fmt"
	"io"

	"github.com/pcbfab/odbpcb/internal/archive"
	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
	"github.com/pcbfab/odbpcb/internal/parser"
	"github.com/pcbfab/odbpcb/internal/project"
	"github.com/pcbfab/odbpcb/internal/spatialindex"
)

// EntryKind identifies which PcbModel slice an IndexEntry points into.
type EntryKind = spatialindex.Kind

const (
	KindComponent = spatialindex.KindComponent
	KindTrace     = spatialindex.KindTrace
	KindArc       = spatialindex.KindArc
	KindVia       = spatialindex.KindVia
	KindZone      = spatialindex.KindZone
)

// Parser parses ODB++ archives into PcbModel values.
type Parser interface {
	// Parse opens path with default options and returns the assembled model.
	Parse(path string) (*model.PcbModel, error)

	// ParseWithOptions parses with caller-supplied options.
	ParseWithOptions(path string, opts ParseOptions) (*model.PcbModel, error)
}

// ParseOptions configures a single parse.
type ParseOptions struct {
	// Step selects a named step (case-insensitive). Empty selects the
	// first step, sorted.
	Step string

	// StrictSymbols makes an unresolved symbol lookup fatal instead of
	// tolerated with a debug-level diagnostic. Default: false.
	StrictSymbols bool

	// Verbose raises the package logger to DEBUG, surfacing
	// tolerated-error diagnostics on stderr as well as in the returned
	// model's Diagnostics(). The level is not lowered again when the
	// parse returns.
	Verbose bool
}

// DefaultParseOptions returns the default options: first step, lenient
// symbol resolution, no extra logging.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{}
}

type defaultParser struct{}

// NewParser returns the default Parser.
func NewParser() Parser {
	return &defaultParser{}
}

func (p *defaultParser) Parse(path string) (*model.PcbModel, error) {
	return p.ParseWithOptions(path, DefaultParseOptions())
}

func (p *defaultParser) ParseWithOptions(path string, opts ParseOptions) (*model.PcbModel, error) {
	if opts.Verbose {
		logger.SetLevel(logger.Debug)
	}

	extraction, err := archive.Open(path, opts.Step)
	if err != nil {
		return nil, err
	}
	defer extraction.Close()

	m, err := parser.Assemble(extraction.Root, extraction.StepDir, parser.Options{
		StrictSymbols: opts.StrictSymbols,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble model: %w", err)
	}
	return m, nil
}

// ListSteps opens path and returns the sorted step-directory names
// without running the rest of the pipeline.
func ListSteps(path string) ([]string, error) {
	return archive.ListSteps(path)
}

// Bounds is a millimetre-space axis-aligned bounding box.
type Bounds = geom.Bounds

// IndexEntry is a non-owning pointer back into a PcbModel's geometry
// slices, returned by Query.
type IndexEntry = parser.IndexEntry

// Query exposes the spatial-index bounding-box query over an already
// parsed model, independent of the CLI's --bbox flag.
func Query(m *model.PcbModel, box Bounds) []IndexEntry {
	return parser.Query(m, box)
}

// WriteJSON projects m to the downstream JSON schema and encodes it to
// w. bbox, if non-nil, restricts the placed-geometry arrays (traces,
// trace_arcs, vias, zones, components) to entries intersecting it.
func WriteJSON(w io.Writer, m *model.PcbModel, bbox *geom.Bounds) error {
	return project.Write(w, m, bbox)
}
