package spatialindex

import (
	"testing"

	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/model"
)

func sampleModel() *model.PcbModel {
	return &model.PcbModel{
		Traces: []model.TraceSegment{
			{Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 10, Y: 0}, Bounds: geom.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 0}},
			{Start: geom.Point{X: 100, Y: 100}, End: geom.Point{X: 110, Y: 100}, Bounds: geom.Bounds{MinX: 100, MinY: 100, MaxX: 110, MaxY: 100}},
		},
		Vias: []model.Via{
			{Pos: geom.Point{X: 5, Y: 5}, Bounds: geom.Bounds{MinX: 4.5, MinY: 4.5, MaxX: 5.5, MaxY: 5.5}},
		},
	}
}

func TestBuildInsertsAllKinds(t *testing.T) {
	idx := Build(sampleModel())
	if idx.Count() != 3 {
		t.Fatalf("count = %d, want 3", idx.Count())
	}
}

func TestQueryFindsIntersecting(t *testing.T) {
	idx := Build(sampleModel())
	results := idx.Query(geom.Bounds{MinX: -1, MinY: -1, MaxX: 20, MaxY: 20})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 (first trace + via)", len(results))
	}
}

func TestQueryExcludesDisjoint(t *testing.T) {
	idx := Build(sampleModel())
	results := idx.Query(geom.Bounds{MinX: 1000, MinY: 1000, MaxX: 1010, MaxY: 1010})
	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}
}

func TestQueryOnEmptyModelFallsBackToLinear(t *testing.T) {
	idx := Build(&model.PcbModel{})
	if idx.rtree != nil {
		t.Fatal("expected no rtree for an empty model")
	}
	results := idx.Query(geom.Bounds{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100})
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestEntryKindsDistinguishable(t *testing.T) {
	idx := Build(sampleModel())
	results := idx.Query(geom.Bounds{MinX: -1, MinY: -1, MaxX: 20, MaxY: 20})
	var sawTrace, sawVia bool
	for _, e := range results {
		switch e.Kind {
		case KindTrace:
			sawTrace = true
		case KindVia:
			sawVia = true
		}
	}
	if !sawTrace || !sawVia {
		t.Errorf("expected both trace and via entries, got %+v", results)
	}
}
