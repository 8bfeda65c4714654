package drill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pcbfab/odbpcb/internal/eda"
	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/symbol"
)

func write(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseToolsConvertsUnits(t *testing.T) {
	tools, err := ParseTools(write(t, "tools", "T1 10\nT2 20\n"), geom.Mils, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := geom.ToMM(10, geom.Mils)
	if tools[1] != want {
		t.Errorf("tool 1 = %v, want %v", tools[1], want)
	}
}

func TestParseFeaturesUsesToolTableDiameter(t *testing.T) {
	tools, _ := ParseTools(write(t, "tools", "T0 0.3\n"), geom.Millimeters, nil)
	vias, err := ParseFeatures(write(t, "features", "P 0 0 0 P\n"), geom.Millimeters, tools, symbol.NewDecoder("", nil), nil, "drill1", "F.Cu", "B.Cu", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vias) != 1 {
		t.Fatalf("vias = %d, want 1", len(vias))
	}
	if vias[0].Drill != 0.3 {
		t.Errorf("drill = %v, want 0.3", vias[0].Drill)
	}
}

func TestParseFeaturesAnnularRing(t *testing.T) {
	tools, _ := ParseTools(write(t, "tools", "T0 0.3\n"), geom.Millimeters, nil)
	vias, err := ParseFeatures(write(t, "features", "P 0 0 0 P\n"), geom.Millimeters, tools, symbol.NewDecoder("", nil), nil, "drill1", "F.Cu", "B.Cu", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.3 + annularRingMM
	if vias[0].Diameter != want {
		t.Errorf("diameter = %v, want %v", vias[0].Diameter, want)
	}
}

func TestParseFeaturesDefaultDrillWhenUnresolved(t *testing.T) {
	vias, err := ParseFeatures(write(t, "features", "P 0 0 99 P\n"), geom.Millimeters, Tools{}, symbol.NewDecoder("", nil), nil, "drill1", "F.Cu", "B.Cu", nil)
	if err != nil {
		t.Fatal(err)
	}
	if vias[0].Drill != defaultDrillMM {
		t.Errorf("drill = %v, want default %v", vias[0].Drill, defaultDrillMM)
	}
}

func TestParseFeaturesSpansDefaultLayerPair(t *testing.T) {
	tools, _ := ParseTools(write(t, "tools", "T0 0.3\n"), geom.Millimeters, nil)
	vias, err := ParseFeatures(write(t, "features", "P 0 0 0 P\n"), geom.Millimeters, tools, symbol.NewDecoder("", nil), nil, "drill1", "F.Cu", "B.Cu", nil)
	if err != nil {
		t.Fatal(err)
	}
	if vias[0].StartLayer != "F.Cu" || vias[0].EndLayer != "B.Cu" {
		t.Errorf("span = %s/%s, want F.Cu/B.Cu", vias[0].StartLayer, vias[0].EndLayer)
	}
}

func TestParseFeaturesNegatesY(t *testing.T) {
	tools, _ := ParseTools(write(t, "tools", "T0 0.3\n"), geom.Millimeters, nil)
	vias, err := ParseFeatures(write(t, "features", "P 0 5 0 P\n"), geom.Millimeters, tools, symbol.NewDecoder("", nil), nil, "drill1", "F.Cu", "B.Cu", nil)
	if err != nil {
		t.Fatal(err)
	}
	if vias[0].Pos.Y != -5 {
		t.Errorf("Y = %v, want -5", vias[0].Pos.Y)
	}
}

func TestParseFeaturesNetCrossReferenceKeyedByOwnLayerName(t *testing.T) {
	// A drill layer's FID records are keyed by the drill layer's own
	// archive name, not by the copper layers it spans.
	const netlistText = `
NET GND
SNT
FID L drill1 0 P
$
`
	netPath := write(t, "data", netlistText)
	nl, err := eda.Parse(netPath)
	if err != nil {
		t.Fatal(err)
	}

	tools, _ := ParseTools(write(t, "tools", "T0 0.3\n"), geom.Millimeters, nil)
	vias, err := ParseFeatures(write(t, "features", "P 0 0 0 P\n"), geom.Millimeters, tools, symbol.NewDecoder("", nil), nl, "drill1", "F.Cu", "B.Cu", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := nl.NameToIndex["GND"]
	if vias[0].NetIndex != want {
		t.Errorf("net index = %d, want %d (GND)", vias[0].NetIndex, want)
	}
	if vias[0].StartLayer != "F.Cu" || vias[0].EndLayer != "B.Cu" {
		t.Errorf("span = %s/%s, want F.Cu/B.Cu (editor names, distinct from the odb name used for the net lookup)", vias[0].StartLayer, vias[0].EndLayer)
	}
}
