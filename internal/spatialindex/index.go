// Package spatialindex builds an R-tree over a parsed PcbModel's placed
// geometry so callers can ask "what's in this region" without a linear
// scan, the same role the teacher's ChartIndex plays over chart bounds.
package spatialindex

import (
	"github.com/dhconnelly/rtreego"

	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/model"
)

// Kind identifies which model slice an Entry points back into.
type Kind string

const (
	KindComponent Kind = "component"
	KindTrace     Kind = "trace"
	KindArc       Kind = "arc"
	KindVia       Kind = "via"
	KindZone      Kind = "zone"
)

// Entry is a non-owning pointer back into the model: the caller looks
// the concrete value up from Kind and Index rather than the index
// holding a copy of the model's data.
type Entry struct {
	Kind   Kind
	Index  int
	bounds geom.Bounds
}

// Bounds implements rtreego.Spatial.
func (e Entry) Bounds() rtreego.Rect {
	return toRect(e.bounds)
}

// Index is the spatial index over one PcbModel's geometry.
type Index struct {
	entries []Entry
	rtree   *rtreego.Rtree
}

// Build inserts one spatial entry per component instance, trace
// segment, trace arc, via, and zone polygon.
func Build(m *model.PcbModel) *Index {
	idx := &Index{}

	for i, c := range m.Components {
		idx.entries = append(idx.entries, Entry{Kind: KindComponent, Index: i, bounds: c.Bounds})
	}
	for i, t := range m.Traces {
		idx.entries = append(idx.entries, Entry{Kind: KindTrace, Index: i, bounds: t.Bounds})
	}
	for i, a := range m.Arcs {
		idx.entries = append(idx.entries, Entry{Kind: KindArc, Index: i, bounds: a.Bounds})
	}
	for i, v := range m.Vias {
		idx.entries = append(idx.entries, Entry{Kind: KindVia, Index: i, bounds: v.Bounds})
	}
	for i, z := range m.Zones {
		for _, poly := range z.Polygons {
			idx.entries = append(idx.entries, Entry{Kind: KindZone, Index: i, bounds: poly.Bounds})
		}
	}

	if len(idx.entries) == 0 {
		return idx
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, e := range idx.entries {
		tree.Insert(e)
	}
	idx.rtree = tree
	return idx
}

// Query returns every entry whose bounding box intersects box. It
// falls back to a linear scan when the tree was never built (an empty
// model), since rtreego requires at least one insertion before
// SearchIntersect is meaningful.
func (idx *Index) Query(box geom.Bounds) []Entry {
	if idx.rtree == nil {
		var result []Entry
		for _, e := range idx.entries {
			if e.bounds.Intersects(box) {
				result = append(result, e)
			}
		}
		return result
	}

	spatials := idx.rtree.SearchIntersect(toRect(box))
	result := make([]Entry, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(Entry))
	}
	return result
}

// Count returns the number of entries in the index.
func (idx *Index) Count() int {
	return len(idx.entries)
}

func toRect(b geom.Bounds) rtreego.Rect {
	w, h := b.Size()
	if w <= 0 {
		w = 1e-9
	}
	if h <= 0 {
		h = 1e-9
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	return rect
}
