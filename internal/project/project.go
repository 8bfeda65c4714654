// Package project converts an assembled PcbModel into the stable JSON
// document downstream renderers and exporters consume, the same role
// the teacher's pkg/s57 convertChart plays converting internal parser
// types into the clean public Chart/Feature/Geometry values.
package project

import (
	"encoding/json"
	"io"

	"github.com/pcbfab/odbpcb/internal/archive"
	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/model"
	"github.com/pcbfab/odbpcb/internal/spatialindex"
)

// Document is the fixed top-level JSON shape. Every field is always
// present; arrays may be empty.
type Document struct {
	Outline    OutlineDoc              `json:"outline"`
	Layers     []LayerDoc              `json:"layers"`
	Nets       []NetDoc                `json:"nets"`
	Stackup    StackupDoc              `json:"stackup"`
	Footprints map[string]FootprintDoc `json:"footprints"`
	Components []ComponentDoc          `json:"components"`
	Traces     []TraceDoc              `json:"traces"`
	TraceArcs  []TraceArcDoc           `json:"trace_arcs"`
	Vias       []ViaDoc                `json:"vias"`
	Zones      []ZoneDoc               `json:"zones"`
	Graphics   []GraphicDoc            `json:"graphics"`

	zoneOrigin []int // doc.Zones[i] came from model.Zones[zoneOrigin[i]]
}

type OutlineDoc struct {
	Segments []SegmentDoc `json:"segments"`
	Arcs     []OutlineArcDoc `json:"arcs"`
}

type SegmentDoc struct {
	Start [2]float64 `json:"start"`
	End   [2]float64 `json:"end"`
	Width float64    `json:"width"`
}

type OutlineArcDoc struct {
	Start [2]float64 `json:"start"`
	Mid   [2]float64 `json:"mid"`
	End   [2]float64 `json:"end"`
	Width float64    `json:"width"`
}

type LayerDoc struct {
	KiCadID      int    `json:"kicad_id"`
	KiCadName    string `json:"kicad_name"`
	Type         string `json:"type"`
	IPCName      string `json:"ipc_name"`
	IPCFunction  string `json:"ipc_function"`
	IPCSide      string `json:"ipc_side"`
	CopperOrder  int    `json:"copper_order"`
}

type NetDoc struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type StackupDoc struct {
	BoardThickness float64           `json:"board_thickness"`
	Layers         []StackupLayerDoc `json:"layers"`
}

type StackupLayerDoc struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Thickness   float64 `json:"thickness"`
	Material    string  `json:"material"`
	EpsilonR    float64 `json:"epsilon_r"`
	KiCadLayerID int    `json:"kicad_layer_id"`
}

type FootprintDoc struct {
	Name      string       `json:"name"`
	Origin    [2]float64   `json:"origin"`
	Pads      []PadDoc     `json:"pads"`
	Graphics  []GraphicDoc `json:"graphics"`
}

type PadDoc struct {
	Number         string     `json:"number"`
	Shape          string     `json:"shape"`
	Width          float64    `json:"width"`
	Height         float64    `json:"height"`
	RoundRectRatio float64    `json:"roundrect_ratio"`
	Drill          float64    `json:"drill"`
	Pos            [2]float64 `json:"pos"`
	Rotation       float64    `json:"rotation"`
	NetIndex       int        `json:"net_index"`
	NetName        string     `json:"net_name"`
	PadType        string     `json:"pad_type"`
	Layers         []string   `json:"layers"`
}

type ComponentDoc struct {
	Refdes       string            `json:"refdes"`
	FootprintRef string            `json:"footprint_ref"`
	Value        string            `json:"value"`
	Position     [2]float64        `json:"position"`
	Rotation     float64           `json:"rotation"`
	Mirror       bool              `json:"mirror"`
	PinNetMap    map[string]string `json:"pin_net_map"`
}

type TraceDoc struct {
	Start [2]float64 `json:"start"`
	End   [2]float64 `json:"end"`
	Width float64    `json:"width"`
	Layer string     `json:"layer"`
	NetID int        `json:"net_id"`
}

type TraceArcDoc struct {
	Start [2]float64 `json:"start"`
	Mid   [2]float64 `json:"mid"`
	End   [2]float64 `json:"end"`
	Width float64    `json:"width"`
	Layer string     `json:"layer"`
	NetID int        `json:"net_id"`
}

type ViaDoc struct {
	Position   [2]float64 `json:"position"`
	Diameter   float64    `json:"diameter"`
	Drill      float64    `json:"drill"`
	StartLayer string     `json:"start_layer"`
	EndLayer   string     `json:"end_layer"`
	NetID      int        `json:"net_id"`
}

type ZoneDoc struct {
	Layer        string       `json:"layer"`
	NetID        int          `json:"net_id"`
	NetName      string       `json:"net_name"`
	MinThickness float64      `json:"min_thickness"`
	Clearance    float64      `json:"clearance"`
	Outline      [][2]float64 `json:"outline"`
	Holes        [][][2]float64 `json:"holes,omitempty"`
}

type GraphicDoc struct {
	Kind       string      `json:"kind"`
	Start      [2]float64  `json:"start"`
	End        [2]float64  `json:"end"`
	Center     *[2]float64 `json:"center,omitempty"`
	Radius     float64     `json:"radius"`
	Width      float64     `json:"width"`
	Layer      string      `json:"layer"`
	Fill       bool        `json:"fill"`
	SweepAngle float64     `json:"sweep_angle"`
}

// Project converts m into its JSON document form.
func Project(m *model.PcbModel) *Document {
	doc := &Document{
		Outline:    projectOutline(m.Outline),
		Layers:     projectLayers(m.Layers),
		Nets:       projectNets(m.Nets),
		Stackup:    projectStackup(m),
		Footprints: projectFootprints(m),
		Components: projectComponents(m),
		Traces:     projectTraces(m.Traces),
		TraceArcs:  projectTraceArcs(m.Arcs),
		Vias:       projectVias(m.Vias),
		Graphics:   projectGraphics(m.Graphics),
	}
	doc.Zones, doc.zoneOrigin = projectZones(m.Zones)
	return doc
}

// Write projects m, optionally restricting traces/arcs/vias/zones/
// components to those intersecting bbox, and encodes the result as
// indented JSON to w.
func Write(w io.Writer, m *model.PcbModel, bbox *geom.Bounds) error {
	doc := Project(m)
	if bbox != nil {
		ApplyBBox(doc, m, *bbox)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ApplyBBox restricts doc's placed-geometry arrays to entries whose
// model counterpart intersects box, per the spatial index built over
// m. footprints, layers, nets, stackup, and outline are left
// untouched: the filter narrows what's placed on the board, not the
// board's own reference data.
func ApplyBBox(doc *Document, m *model.PcbModel, box geom.Bounds) {
	idx := spatialindex.Build(m)
	entries := idx.Query(box)

	keepTrace := map[int]bool{}
	keepArc := map[int]bool{}
	keepVia := map[int]bool{}
	keepZone := map[int]bool{}
	keepComponent := map[int]bool{}
	for _, e := range entries {
		switch e.Kind {
		case spatialindex.KindTrace:
			keepTrace[e.Index] = true
		case spatialindex.KindArc:
			keepArc[e.Index] = true
		case spatialindex.KindVia:
			keepVia[e.Index] = true
		case spatialindex.KindZone:
			keepZone[e.Index] = true
		case spatialindex.KindComponent:
			keepComponent[e.Index] = true
		}
	}

	filteredTraces := doc.Traces[:0:0]
	for i, t := range doc.Traces {
		if keepTrace[i] {
			filteredTraces = append(filteredTraces, t)
		}
	}
	doc.Traces = filteredTraces

	filteredArcs := doc.TraceArcs[:0:0]
	for i, a := range doc.TraceArcs {
		if keepArc[i] {
			filteredArcs = append(filteredArcs, a)
		}
	}
	doc.TraceArcs = filteredArcs

	filteredVias := doc.Vias[:0:0]
	for i, v := range doc.Vias {
		if keepVia[i] {
			filteredVias = append(filteredVias, v)
		}
	}
	doc.Vias = filteredVias

	filteredZones := doc.Zones[:0:0]
	for i, z := range doc.Zones {
		if keepZone[doc.zoneOrigin[i]] {
			filteredZones = append(filteredZones, z)
		}
	}
	doc.Zones = filteredZones

	filteredComponents := doc.Components[:0:0]
	for i, c := range doc.Components {
		if keepComponent[i] {
			filteredComponents = append(filteredComponents, c)
		}
	}
	doc.Components = filteredComponents
}

// ListSteps opens path and returns the sorted step-directory names
// without running the rest of the pipeline.
func ListSteps(path string) ([]string, error) {
	return archive.ListSteps(path)
}

func projectOutline(items []model.GraphicItem) OutlineDoc {
	var out OutlineDoc
	for _, it := range items {
		switch it.Type {
		case model.GraphicArc:
			mid := xy(it.Start)
			if it.Mid != nil {
				mid = xy(*it.Mid)
			}
			out.Arcs = append(out.Arcs, OutlineArcDoc{Start: xy(it.Start), Mid: mid, End: xy(it.End), Width: it.Width})
		default:
			out.Segments = append(out.Segments, SegmentDoc{Start: xy(it.Start), End: xy(it.End), Width: it.Width})
		}
	}
	return out
}

func projectLayers(layers []model.LayerDef) []LayerDoc {
	docs := make([]LayerDoc, 0, len(layers))
	for _, l := range layers {
		docs = append(docs, LayerDoc{
			KiCadID:     l.LayerID,
			KiCadName:   l.KiCadName,
			Type:        layerClass(l.Type),
			IPCName:     l.ODBName,
			IPCFunction: ipcFunction(l.Type),
			IPCSide:     ipcSide(l.Side),
			CopperOrder: l.CopperOrder,
		})
	}
	return docs
}

func layerClass(t model.LayerType) string {
	switch t {
	case model.LayerSignal, model.LayerMixed:
		return "signal"
	case model.LayerPower:
		return "power"
	default:
		return "user"
	}
}

func ipcFunction(t model.LayerType) string {
	switch t {
	case model.LayerSignal, model.LayerMixed:
		return "SIGNAL"
	case model.LayerPower:
		return "POWER_GROUND"
	case model.LayerSolderMask:
		return "SOLDERMASK"
	case model.LayerSilkscreen:
		return "SILKSCREEN"
	case model.LayerSolderPaste:
		return "PASTEMASK"
	case model.LayerDrill:
		return "DRILL"
	case model.LayerDocument:
		return "DOCUMENT"
	case model.LayerComponent:
		return "ASSEMBLY"
	default:
		return "DOCUMENT"
	}
}

func ipcSide(s model.LayerSide) string {
	switch s {
	case model.SideTop:
		return "TOP"
	case model.SideBottom:
		return "BOTTOM"
	default:
		return "ALL"
	}
}

func projectNets(nets []model.NetDef) []NetDoc {
	docs := make([]NetDoc, 0, len(nets))
	for _, n := range nets {
		docs = append(docs, NetDoc{ID: n.Index, Name: n.Name})
	}
	return docs
}

func projectStackup(m *model.PcbModel) StackupDoc {
	layerID := map[string]int{}
	for _, l := range m.Layers {
		layerID[l.KiCadName] = l.LayerID
	}
	docs := make([]StackupLayerDoc, 0, len(m.Stackup))
	for _, s := range m.Stackup {
		docs = append(docs, StackupLayerDoc{
			Name:         s.Name,
			Type:         string(s.Type),
			Thickness:    s.Thickness,
			Material:     s.Material,
			EpsilonR:     s.EpsilonR,
			KiCadLayerID: layerID[s.Name],
		})
	}
	return StackupDoc{BoardThickness: m.BoardThickness, Layers: docs}
}

// projectFootprints rebases each footprint's pads into footprint-local
// space using the first component instance that placed it: subtract
// that component's world position, rotate by -rotation, and mirror on
// X for a bottom-side placement.
func projectFootprints(m *model.PcbModel) map[string]FootprintDoc {
	owner := map[string]*model.ComponentInstance{}
	for i := range m.Components {
		c := &m.Components[i]
		if _, ok := owner[c.FootprintName]; !ok {
			owner[c.FootprintName] = c
		}
	}

	docs := make(map[string]FootprintDoc, len(m.Footprints))
	for name, fp := range m.Footprints {
		comp := owner[name]
		pads := make([]PadDoc, 0, len(fp.Pads))
		for _, pad := range fp.Pads {
			local := pad.Pos
			if comp != nil {
				local = pad.Pos.Sub(comp.Pos).Rotate(-comp.Rotation)
				if comp.Side == model.Bottom {
					local = local.MirrorX()
				}
			}
			pads = append(pads, PadDoc{
				Number:         pad.Number,
				Shape:          string(pad.Def.Shape),
				Width:          pad.Def.Width,
				Height:         pad.Def.Height,
				RoundRectRatio: pad.Def.RoundRectRatio,
				Drill:          pad.Def.Drill,
				Pos:            xy(local),
				Rotation:       pad.Rotation,
				NetIndex:       pad.NetIndex,
				NetName:        pad.NetName,
				PadType:        string(pad.Type),
				Layers:         pad.Layers,
			})
		}
		docs[name] = FootprintDoc{
			Name:     name,
			Origin:   [2]float64{0, 0},
			Pads:     pads,
			Graphics: projectGraphics(fp.Graphics),
		}
	}
	return docs
}

func projectComponents(m *model.PcbModel) []ComponentDoc {
	docs := make([]ComponentDoc, 0, len(m.Components))
	for _, c := range m.Components {
		docs = append(docs, ComponentDoc{
			Refdes:       c.Reference,
			FootprintRef: c.FootprintName,
			Value:        c.Properties["VALUE"],
			Position:     xy(c.Pos),
			Rotation:     c.Rotation,
			Mirror:       c.Side == model.Bottom,
			PinNetMap:    c.PinNets,
		})
	}
	return docs
}

func projectTraces(traces []model.TraceSegment) []TraceDoc {
	docs := make([]TraceDoc, 0, len(traces))
	for _, t := range traces {
		docs = append(docs, TraceDoc{Start: xy(t.Start), End: xy(t.End), Width: t.Width, Layer: t.Layer, NetID: t.NetIndex})
	}
	return docs
}

func projectTraceArcs(arcs []model.TraceArc) []TraceArcDoc {
	docs := make([]TraceArcDoc, 0, len(arcs))
	for _, a := range arcs {
		docs = append(docs, TraceArcDoc{Start: xy(a.Start), Mid: xy(a.Mid), End: xy(a.End), Width: a.Width, Layer: a.Layer, NetID: a.NetIndex})
	}
	return docs
}

func projectVias(vias []model.Via) []ViaDoc {
	docs := make([]ViaDoc, 0, len(vias))
	for _, v := range vias {
		docs = append(docs, ViaDoc{
			Position:   xy(v.Pos),
			Diameter:   v.Diameter,
			Drill:      v.Drill,
			StartLayer: v.StartLayer,
			EndLayer:   v.EndLayer,
			NetID:      v.NetIndex,
		})
	}
	return docs
}

// projectZones flattens one JSON zone per ZonePolygon, returning the
// docs alongside a parallel slice recording which model.Zones index
// each doc came from, since the spatial index addresses zones by that
// index rather than by flattened polygon position.
func projectZones(zones []model.Zone) ([]ZoneDoc, []int) {
	var docs []ZoneDoc
	var origin []int
	for i, z := range zones {
		for _, poly := range z.Polygons {
			docs = append(docs, ZoneDoc{
				Layer:   z.Layer,
				NetID:   z.NetIndex,
				NetName: z.NetName,
				Outline: points(poly.Outline),
				Holes:   holes(poly.Holes),
			})
			origin = append(origin, i)
		}
	}
	return docs, origin
}

func projectGraphics(items []model.GraphicItem) []GraphicDoc {
	docs := make([]GraphicDoc, 0, len(items))
	for _, it := range items {
		d := GraphicDoc{
			Kind:       string(it.Type),
			Start:      xy(it.Start),
			End:        xy(it.End),
			Width:      it.Width,
			Layer:      it.Layer,
			Fill:       it.Fill,
			SweepAngle: it.SweepAngle,
		}
		if it.Center != nil {
			c := xy(*it.Center)
			d.Center = &c
			d.Radius = it.Start.Dist(*it.Center)
		}
		docs = append(docs, d)
	}
	return docs
}

func points(pts []geom.Point) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = xy(p)
	}
	return out
}

func holes(rings [][]geom.Point) [][][2]float64 {
	if len(rings) == 0 {
		return nil
	}
	out := make([][][2]float64, len(rings))
	for i, r := range rings {
		out[i] = points(r)
	}
	return out
}

func xy(p geom.Point) [2]float64 {
	return [2]float64{p.X, p.Y}
}
