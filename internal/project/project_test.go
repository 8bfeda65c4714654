package project

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/model"
)

func sampleModel() *model.PcbModel {
	fp := &model.Footprint{
		Name: "R0402",
		Pads: []model.FootprintPad{
			{Number: "1", Def: model.PadDef{Shape: model.PadRect, Width: 0.5, Height: 0.5}, Pos: geom.Point{X: 10, Y: 10}, NetIndex: 1, NetName: "GND", Type: model.PadSMD, Layers: []string{"F.Cu"}},
			{Number: "2", Def: model.PadDef{Shape: model.PadRect, Width: 0.5, Height: 0.5}, Pos: geom.Point{X: 11, Y: 10}, NetIndex: 2, NetName: "VCC", Type: model.PadSMD, Layers: []string{"F.Cu"}},
		},
	}
	return &model.PcbModel{
		Layers: []model.LayerDef{
			{ODBName: "top", KiCadName: "F.Cu", Type: model.LayerSignal, Side: model.SideTop, LayerID: 0, CopperOrder: 0},
			{ODBName: "bottom", KiCadName: "B.Cu", Type: model.LayerSignal, Side: model.SideBottom, LayerID: 2, CopperOrder: 1},
		},
		Nets: []model.NetDef{{Index: 0, Name: ""}, {Index: 1, Name: "GND"}, {Index: 2, Name: "VCC"}},
		Outline: []model.GraphicItem{
			{Type: model.GraphicLine, Layer: "Edge.Cuts", Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 10, Y: 0}},
		},
		Footprints: map[string]*model.Footprint{"R0402": fp},
		Components: []model.ComponentInstance{
			{Reference: "R1", FootprintName: "R0402", Footprint: fp, Pos: geom.Point{X: 10, Y: 10}, Side: model.Top,
				Properties: map[string]string{"VALUE": "10k"}, PinNets: map[string]string{"1": "GND", "2": "VCC"},
				Bounds: geom.BoundsOf(geom.Point{X: 10, Y: 10})},
		},
		Traces: []model.TraceSegment{
			{Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 5, Y: 0}, Width: 0.25, Layer: "F.Cu", NetIndex: 1,
				Bounds: geom.Bounds{MinX: 0, MinY: -0.1, MaxX: 5, MaxY: 0.1}},
			{Start: geom.Point{X: 100, Y: 100}, End: geom.Point{X: 105, Y: 100}, Width: 0.25, Layer: "F.Cu", NetIndex: 2,
				Bounds: geom.Bounds{MinX: 100, MinY: 99.9, MaxX: 105, MaxY: 100.1}},
		},
		Zones: []model.Zone{
			{NetIndex: 1, NetName: "GND", Layer: "F.Cu", Polygons: []model.ZonePolygon{
				{Outline: []geom.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 20}}, Bounds: geom.Bounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}},
			}},
		},
	}
}

func TestProjectTopLevelKeysAlwaysPresent(t *testing.T) {
	doc := Project(&model.PcbModel{})
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"outline", "layers", "nets", "stackup", "footprints", "components", "traces", "trace_arcs", "vias", "zones", "graphics"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
}

func TestProjectFootprintPadRebasedLocal(t *testing.T) {
	doc := Project(sampleModel())
	fp, ok := doc.Footprints["R0402"]
	if !ok {
		t.Fatal("footprint R0402 missing")
	}
	if len(fp.Pads) != 2 {
		t.Fatalf("pads = %d, want 2", len(fp.Pads))
	}
	// pad 1 sits exactly at the owning component's position, so its
	// local offset should be (0, 0).
	if fp.Pads[0].Pos[0] != 0 || fp.Pads[0].Pos[1] != 0 {
		t.Errorf("pad 1 local pos = %+v, want (0,0)", fp.Pads[0].Pos)
	}
	// pad 2 sits 1mm to the right in world space.
	if fp.Pads[1].Pos[0] != 1 {
		t.Errorf("pad 2 local X = %v, want 1", fp.Pads[1].Pos[0])
	}
}

func TestProjectComponentMirrorAndPinNetMap(t *testing.T) {
	doc := Project(sampleModel())
	if len(doc.Components) != 1 {
		t.Fatalf("components = %d, want 1", len(doc.Components))
	}
	c := doc.Components[0]
	if c.Mirror {
		t.Error("top-side component should not be mirrored")
	}
	if c.PinNetMap["1"] != "GND" || c.PinNetMap["2"] != "VCC" {
		t.Errorf("pin_net_map = %+v", c.PinNetMap)
	}
	if c.Value != "10k" {
		t.Errorf("value = %q, want 10k", c.Value)
	}
}

func TestProjectZonesFlattenedOnePerPolygon(t *testing.T) {
	doc := Project(sampleModel())
	if len(doc.Zones) != 1 {
		t.Fatalf("zones = %d, want 1", len(doc.Zones))
	}
	if len(doc.Zones[0].Outline) != 3 {
		t.Errorf("zone outline points = %d, want 3", len(doc.Zones[0].Outline))
	}
}

func TestApplyBBoxFiltersTracesOutsideRegion(t *testing.T) {
	m := sampleModel()
	doc := Project(m)
	if len(doc.Traces) != 2 {
		t.Fatalf("precondition: traces = %d, want 2", len(doc.Traces))
	}
	ApplyBBox(doc, m, geom.Bounds{MinX: -1, MinY: -1, MaxX: 10, MaxY: 10})
	if len(doc.Traces) != 1 {
		t.Fatalf("traces after bbox filter = %d, want 1", len(doc.Traces))
	}
	if doc.Traces[0].Layer != "F.Cu" || doc.Traces[0].NetID != 1 {
		t.Errorf("unexpected surviving trace: %+v", doc.Traces[0])
	}
}

func TestApplyBBoxLeavesReferenceDataAlone(t *testing.T) {
	m := sampleModel()
	doc := Project(m)
	ApplyBBox(doc, m, geom.Bounds{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1})
	if len(doc.Layers) != 2 {
		t.Errorf("layers should be untouched by bbox filter, got %d", len(doc.Layers))
	}
	if len(doc.Footprints) != 1 {
		t.Errorf("footprints should be untouched by bbox filter, got %d", len(doc.Footprints))
	}
}

func TestLayerClassificationAndIPCFields(t *testing.T) {
	doc := Project(sampleModel())
	f := doc.Layers[0]
	if f.Type != "signal" || f.IPCFunction != "SIGNAL" || f.IPCSide != "TOP" {
		t.Errorf("layer doc = %+v", f)
	}
}

func TestLayerClassificationPowerLayerStaysDistinctFromSignal(t *testing.T) {
	m := &model.PcbModel{
		Layers: []model.LayerDef{
			{KiCadName: "In2.Cu", ODBName: "gndplane", Type: model.LayerPower, Side: model.SideBottom},
		},
	}
	doc := Project(m)
	l := doc.Layers[0]
	if l.Type != "power" {
		t.Errorf("type = %q, want power", l.Type)
	}
	if l.IPCFunction != "POWER_GROUND" {
		t.Errorf("ipc function = %q, want POWER_GROUND", l.IPCFunction)
	}
}
