// Package layerfeature parses one copper/mask/silk/paste/fab layer's
// "features" file into trace segments, trace arcs, and surface zones,
// resolving feature widths via the layer-local symbol table and
// cross-referencing nets via the EDA feature-id map.
package layerfeature

import (
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/eda"
	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
	"github.com/pcbfab/odbpcb/internal/records"
	"github.com/pcbfab/odbpcb/internal/symbol"
)

const defaultWidthMM = 0.25

// Result is what one layer's feature file contributes to the model.
type Result struct {
	Traces []model.TraceSegment
	Arcs   []model.TraceArc
	Zones  []model.Zone
}

// Parse reads path (a layer's features file) and returns its contributed
// geometry. odbLayer is the archive's own layer name (e.g. "top"),
// used to key the EDA feature-id-to-net cross-reference, exactly as
// eda/data's "FID L <odb_layer> <feature_id>" records name it.
// editorLayer is the resolved editor-layer name (e.g. F.Cu) features on
// this layer are tagged with in the output model. net is the archive's
// EDA cross-reference (nil is treated as "always unconnected"). diag,
// if non-nil, records malformed records and discarded surfaces.
func Parse(path string, unit geom.Unit, odbLayer, editorLayer string, decoder *symbol.Decoder, net *eda.Netlist, diag model.DiagFunc) (Result, error) {
	f, scanner, err := openScanner(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	localSyms, body := records.ReadSymbolTable(scanner)

	var res Result
	featureID := 0

	var surfaceOutline []geom.Point
	var surfaceNetIdx int
	inSurface := false
	var surfaceStart geom.Point
	surfaceHave := false

	widthOf := func(symField string) float64 {
		return resolveWidth(symField, localSyms, decoder)
	}

	netIndexFor := func(id int) int {
		if net == nil {
			return 0
		}
		return net.NetIndex(odbLayer, id)
	}

	for _, pl := range body {
		text := pl.Text
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "L":
			if len(fields) < 6 {
				logger.Debugf("layerfeature: malformed L record at %s:%d: %q", path, pl.Number, text)
				if diag != nil {
					diag("layerfeature", path, pl.Number, "malformed L record: %q", text)
				}
				continue
			}
			start := toPoint(fields[1], fields[2], unit)
			end := toPoint(fields[3], fields[4], unit)
			width := widthOf(fields[5])
			idx := netIndexFor(featureID)
			featureID++
			res.Traces = append(res.Traces, model.TraceSegment{
				Start: start, End: end, Width: width, Layer: editorLayer, NetIndex: idx,
				Bounds: geom.BoundsOf(start, end).Expand(width / 2),
			})

		case "P":
			if len(fields) < 4 {
				logger.Debugf("layerfeature: malformed P record at %s:%d: %q", path, pl.Number, text)
				if diag != nil {
					diag("layerfeature", path, pl.Number, "malformed P record: %q", text)
				}
				continue
			}
			// Pad flashes are retained as features but not converted
			// into standalone model entities here; components own
			// pads. Still consume a feature-id ordinal so later
			// records' ordinals stay aligned with the EDA map.
			featureID++

		case "A":
			if len(fields) < 8 {
				logger.Debugf("layerfeature: malformed A record at %s:%d: %q", path, pl.Number, text)
				if diag != nil {
					diag("layerfeature", path, pl.Number, "malformed A record: %q", text)
				}
				continue
			}
			start := toPoint(fields[1], fields[2], unit)
			end := toPoint(fields[3], fields[4], unit)
			center := toPoint(fields[5], fields[6], unit)
			width := widthOf(fields[7])
			clockwise := strings.EqualFold(fields[len(fields)-1], "Y")
			mid := geom.ArcCenterToMid(start, end, center, clockwise)
			idx := netIndexFor(featureID)
			featureID++
			res.Arcs = append(res.Arcs, model.TraceArc{
				Start: start, Mid: mid, End: end, Width: width, Layer: editorLayer, NetIndex: idx,
				Bounds: geom.BoundsOf(start, mid, end).Expand(width / 2),
			})

		case "S":
			inSurface = true
			surfaceOutline = nil
			surfaceHave = false
			surfaceNetIdx = netIndexFor(featureID)
			featureID++

		case "OB":
			if !inSurface || len(fields) < 3 {
				continue
			}
			surfaceStart = toPoint(fields[1], fields[2], unit)
			surfaceOutline = append(surfaceOutline, surfaceStart)
			surfaceHave = true

		case "OS":
			if !inSurface || !surfaceHave || len(fields) < 3 {
				continue
			}
			pt := toPoint(fields[1], fields[2], unit)
			surfaceOutline = append(surfaceOutline, pt)

		case "OC":
			if !inSurface || !surfaceHave || len(fields) < 6 {
				continue
			}
			end := toPoint(fields[1], fields[2], unit)
			center := toPoint(fields[3], fields[4], unit)
			clockwise := strings.EqualFold(fields[5], "Y")
			prev := surfaceOutline[len(surfaceOutline)-1]
			mid := geom.ArcCenterToMid(prev, end, center, clockwise)
			surfaceOutline = append(surfaceOutline, mid, end)

		case "SE":
			if !inSurface {
				continue
			}
			if len(surfaceOutline) < 3 {
				logger.Debugf("layerfeature: truncated surface at %s:%d, discarding", path, pl.Number)
				if diag != nil {
					diag("layerfeature", path, pl.Number, "truncated surface, discarding")
				}
				inSurface = false
				surfaceOutline = nil
				continue
			}
			poly := model.ZonePolygon{Outline: surfaceOutline, Bounds: geom.BoundsOf(surfaceOutline...)}
			res.Zones = append(res.Zones, model.Zone{
				NetIndex: surfaceNetIdx,
				NetName:  netNameOf(net, surfaceNetIdx),
				Layer:    editorLayer,
				Polygons: []model.ZonePolygon{poly},
			})
			inSurface = false
			surfaceOutline = nil
		}
	}

	if inSurface {
		logger.Debugf("layerfeature: %s ended mid-surface, discarding accumulated outline", path)
		if diag != nil {
			diag("layerfeature", path, 0, "file ended mid-surface, discarding accumulated outline")
		}
	}

	return res, nil
}

func netNameOf(net *eda.Netlist, idx int) string {
	if net == nil {
		return ""
	}
	for _, n := range net.Nets {
		if n.Index == idx {
			return n.Name
		}
	}
	return ""
}

func resolveWidth(symField string, local records.SymbolTable, decoder *symbol.Decoder) float64 {
	if idx, err := strconv.Atoi(symField); err == nil {
		if name, ok := local[idx]; ok {
			def := decoder.Decode(name)
			if w := widthFromDef(def); w > 0 {
				return w
			}
		}
		logger.Debugf("layerfeature: symbol index %d not in layer-local table, using default width", idx)
		return defaultWidthMM
	}
	// Not numeric: treat the field itself as a symbol name.
	def := decoder.Decode(symField)
	if w := widthFromDef(def); w > 0 {
		return w
	}
	return defaultWidthMM
}

func widthFromDef(def model.PadDef) float64 {
	switch def.Shape {
	case model.PadCircle:
		return def.Width
	default:
		if def.Width > 0 {
			return def.Width
		}
	}
	return 0
}

func toPoint(xs, ys string, unit geom.Unit) geom.Point {
	x, _ := strconv.ParseFloat(xs, 64)
	y, _ := strconv.ParseFloat(ys, 64)
	return geom.Point{X: geom.ToMM(x, unit), Y: geom.NegateY(geom.ToMM(y, unit))}
}
