// Package model defines PcbModel, the in-memory, layout-editor-friendly
// representation every ODB++ parsing stage contributes to and the JSON
// projector consumes.
package model

import (
	"fmt"

	"github.com/pcbfab/odbpcb/internal/geom"
)

// PadShape enumerates the pad geometries the symbol decoder produces.
type PadShape string

const (
	PadCircle     PadShape = "circle"
	PadRect       PadShape = "rect"
	PadOval       PadShape = "oval"
	PadRoundRect  PadShape = "roundrect"
	PadCustom     PadShape = "custom"
)

// PadDef is a symbol decoded into geometry, independent of any
// particular placement.
type PadDef struct {
	Shape          PadShape
	Width, Height  float64
	RoundRectRatio float64 // (0, 0.5], only meaningful when Shape == PadRoundRect
	CustomOutline  []geom.Point
	Drill          float64
}

// PadType classifies how a FootprintPad connects through the board.
type PadType string

const (
	PadSMD       PadType = "smd"
	PadThruHole  PadType = "thru_hole"
	PadNPThruHole PadType = "np_thru_hole"
)

// FootprintPad is one pad of a Footprint. Pos stays in world space in
// the model; the projector writes the footprint-local position into
// its JSON output without changing Pos.
type FootprintPad struct {
	Number    string
	Def       PadDef
	Pos       geom.Point
	Rotation  float64
	NetIndex  int
	NetName   string
	Type      PadType
	Layers    []string
}

// Footprint is the physical pad geometry shared by every
// ComponentInstance that places the same package.
type Footprint struct {
	ID       string
	Name     string
	Pads     []FootprintPad
	Graphics []GraphicItem
}

// Side is which face of the board a component sits on.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
)

// ComponentInstance places a Footprint at a position and rotation.
// PinNets carries this particular placement's pad-number-to-net-name
// assignment; Footprint.Pads is a shared geometry template keyed by
// the first occurrence of FootprintName, so per-instance net
// assignments cannot live there.
type ComponentInstance struct {
	ID            string
	Reference     string
	FootprintName string
	Footprint     *Footprint
	Pos           geom.Point
	Rotation      float64
	Side          Side
	Properties    map[string]string
	PinNets       map[string]string
	Bounds        geom.Bounds
}

// TraceSegment is a straight copper trace.
type TraceSegment struct {
	Start, End geom.Point
	Width      float64
	Layer      string
	NetIndex   int
	Bounds     geom.Bounds
}

// TraceArc is an arc-shaped copper trace.
type TraceArc struct {
	Start, Mid, End geom.Point
	Width           float64
	Layer           string
	NetIndex        int
	Bounds          geom.Bounds
}

// Via is a plated hole promoted from a drill hit, connecting a pair of
// copper layers.
type Via struct {
	Pos              geom.Point
	Diameter, Drill  float64
	NetIndex         int
	StartLayer, EndLayer string
	Bounds           geom.Bounds
}

// ZonePolygon is one pour outline (with holes) of a Zone.
type ZonePolygon struct {
	Outline []geom.Point
	Holes   [][]geom.Point
	Bounds  geom.Bounds
}

// Zone is a copper pour belonging to a single net on a single layer.
type Zone struct {
	NetIndex int
	NetName  string
	Layer    string
	Polygons []ZonePolygon
}

// GraphicItemType enumerates the non-copper drawing primitives used for
// board outline, silkscreen, and similar graphics.
type GraphicItemType string

const (
	GraphicLine    GraphicItemType = "line"
	GraphicArc     GraphicItemType = "arc"
	GraphicCircle  GraphicItemType = "circle"
	GraphicPolygon GraphicItemType = "polygon"
	GraphicRect    GraphicItemType = "rect"
)

// GraphicItem is a single non-copper drawing primitive.
type GraphicItem struct {
	Type          GraphicItemType
	Layer         string
	Start, End    geom.Point
	Mid           *geom.Point
	Center        *geom.Point
	Width         float64
	Fill          bool
	SweepAngle    float64
}

// LayerType classifies an ODB++ layer's electrical/manufacturing role.
type LayerType string

const (
	LayerSignal      LayerType = "signal"
	LayerPower       LayerType = "power"
	LayerMixed       LayerType = "mixed"
	LayerSolderMask  LayerType = "soldermask"
	LayerSilkscreen  LayerType = "silkscreen"
	LayerSolderPaste LayerType = "solderpaste"
	LayerComponent   LayerType = "component"
	LayerDrill       LayerType = "drill"
	LayerDocument    LayerType = "document"
	LayerOther       LayerType = "other"
)

// LayerSide is which face of the board a non-copper layer belongs to.
type LayerSide string

const (
	SideTop    LayerSide = "top"
	SideBottom LayerSide = "bottom"
	SideBoth   LayerSide = "both"
)

// Polarity mirrors ODB++'s POLARITY key. It is carried as metadata only;
// no downstream consumer currently branches on it.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

// LayerDef is one entry of the layer stack, bridging the ODB++ source
// name and the editor-facing name/id assigned by the matrix parser.
type LayerDef struct {
	ODBName     string
	KiCadName   string
	Type        LayerType
	Side        LayerSide
	LayerID     int
	Polarity    Polarity
	CopperOrder int // -1 for non-copper layers
}

// NetDef is one entry of the netlist. Index 0 is always the reserved
// unconnected net with an empty Name.
type NetDef struct {
	Index int
	Name  string
}

// StackupLayerType classifies one physical layer of the board's
// cross-section (distinct from LayerType, which classifies a logical
// ODB++ layer).
type StackupLayerType string

const (
	StackupCopper      StackupLayerType = "copper"
	StackupCore        StackupLayerType = "core"
	StackupPrepreg     StackupLayerType = "prepreg"
	StackupSolderMask  StackupLayerType = "soldermask"
)

// StackupLayer is one physical layer of the board cross-section.
type StackupLayer struct {
	Name      string
	Type      StackupLayerType
	Thickness float64
	Material  string
	EpsilonR  float64
}

// Diagnostic records a tolerated (non-fatal) parsing issue, so a caller
// can learn what was recovered from instead of only reading stderr.
type Diagnostic struct {
	Stage   string
	Path    string
	Line    int
	Message string
}

// DiagFunc records one tolerated parsing issue. PcbModel.AddDiagnostic
// has this exact signature, so a stage's method value can be passed
// down into leaf parsers that have no PcbModel of their own to report
// through. A nil DiagFunc means "nobody is listening" and is always
// safe to call through a nil check.
type DiagFunc func(stage, path string, line int, format string, args ...any)

// PcbModel is the single, fully assembled in-memory representation of
// a parsed ODB++ job. It is built exclusively by the parser stages in
// their fixed order and is read-only once handed to the projector.
type PcbModel struct {
	ID             string
	JobName        string
	Units          geom.Unit
	BoardThickness float64

	Layers  []LayerDef
	Stackup []StackupLayer
	Nets    []NetDef

	Outline []GraphicItem

	Footprints map[string]*Footprint
	Components []ComponentInstance

	Traces []TraceSegment
	Arcs   []TraceArc
	Vias   []Via
	Zones  []Zone

	Graphics []GraphicItem

	Bounds geom.Bounds

	diagnostics []Diagnostic
}

// AddDiagnostic records a tolerated parsing issue.
func (m *PcbModel) AddDiagnostic(stage, path string, line int, format string, args ...any) {
	m.diagnostics = append(m.diagnostics, Diagnostic{
		Stage:   stage,
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns every tolerated parsing issue recorded while
// building the model.
func (m *PcbModel) Diagnostics() []Diagnostic {
	return m.diagnostics
}

// NetName returns the name of the net at index, or "" if out of range.
func (m *PcbModel) NetName(index int) string {
	if index < 0 || index >= len(m.Nets) {
		return ""
	}
	return m.Nets[index].Name
}
