package profile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/model"
)

func writeProfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseRectangleClosesAutomatically(t *testing.T) {
	const text = `
OB 0 0
OS 10 0
OS 10 10
OS 0 10
OE
`
	items, err := Parse(writeProfile(t, text), geom.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	// 3 explicit segments + 1 synthesized closing segment.
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4", len(items))
	}
	last := items[len(items)-1]
	if last.End.X != 0 || last.End.Y != 0 {
		t.Errorf("closing segment should end at origin, got %+v", last.End)
	}
}

func TestParseAlreadyClosedContourSkipsClose(t *testing.T) {
	const text = `
OB 0 0
OS 10 0
OS 10 10
OS 0 10
OS 0 0
OE
`
	items, err := Parse(writeProfile(t, text), geom.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4 (no synthesized close)", len(items))
	}
}

func TestParseArcEmitsStartMidEnd(t *testing.T) {
	const text = `
OB 10 0
OC 0 10 0 0 N
OE
`
	items, err := Parse(writeProfile(t, text), geom.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	var arc *model.GraphicItem
	for i := range items {
		if items[i].Type == model.GraphicArc {
			arc = &items[i]
		}
	}
	if arc == nil {
		t.Fatal("expected an arc item")
	}
	if arc.Mid == nil {
		t.Fatal("arc should carry a midpoint")
	}
	r := math.Hypot(arc.Mid.X, arc.Mid.Y)
	if math.Abs(r-10) > 1e-6 {
		t.Errorf("mid radius = %v, want 10", r)
	}
}

func TestParseNegatesY(t *testing.T) {
	const text = `
OB 0 5
OS 10 5
OE
`
	items, err := Parse(writeProfile(t, text), geom.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Start.Y != -5 {
		t.Errorf("Y = %v, want -5 (negated)", items[0].Start.Y)
	}
}

func TestParseSkipsSurfaceForm(t *testing.T) {
	const text = `
S P 0
OB 0 0
OS 10 0
SE
OB 0 0
OS 5 0
OE
`
	items, err := Parse(writeProfile(t, text), geom.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (surface-form lines skipped)", len(items))
	}
}

func TestParseAllItemsOnEdgeCuts(t *testing.T) {
	const text = `
OB 0 0
OS 10 0
OE
`
	items, err := Parse(writeProfile(t, text), geom.Millimeters)
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Layer != EdgeCutsLayer {
			t.Errorf("layer = %s, want %s", it.Layer, EdgeCutsLayer)
		}
		if it.Width != hairline {
			t.Errorf("width = %v, want hairline %v", it.Width, hairline)
		}
	}
}
