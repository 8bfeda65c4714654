// Package profile parses the ODB++ board outline ("profile") stream
// into GraphicItem segments and arcs on Edge.Cuts.
package profile

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
)

const (
	// EdgeCutsLayer is the editor layer every outline item is emitted on.
	EdgeCutsLayer = "Edge.Cuts"
	hairline      = 0.05
	closeEpsilon  = 0.001
)

// Parse reads path (a profile file) and returns the outline as a
// sequence of GraphicItem segments and arcs, in mm, with Y negated.
func Parse(path string, unit geom.Unit) ([]model.GraphicItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []model.GraphicItem
	var first, prev geom.Point
	haveFirst := false
	haveContour := false
	inSurfaceForm := false

	flushClose := func() {
		if !haveContour {
			return
		}
		dx := prev.X - first.X
		dy := prev.Y - first.Y
		if abs(dx) > closeEpsilon || abs(dy) > closeEpsilon {
			items = append(items, model.GraphicItem{
				Type:  model.GraphicLine,
				Layer: EdgeCutsLayer,
				Start: prev,
				End:   first,
				Width: hairline,
			})
		}
		haveContour = false
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "S":
			// Surface-form profile header; skip, the contour form is
			// authoritative.
			inSurfaceForm = true
		case "SE":
			inSurfaceForm = false
		case "OB":
			if inSurfaceForm {
				continue
			}
			if len(fields) < 3 {
				logger.Debugf("profile: malformed OB at line %d: %q", lineNo, text)
				continue
			}
			first = toPoint(fields[1], fields[2], unit)
			prev = first
			haveFirst = true
			haveContour = true
		case "OS":
			if inSurfaceForm || !haveFirst {
				continue
			}
			if len(fields) < 3 {
				logger.Debugf("profile: malformed OS at line %d: %q", lineNo, text)
				continue
			}
			pt := toPoint(fields[1], fields[2], unit)
			items = append(items, model.GraphicItem{
				Type:  model.GraphicLine,
				Layer: EdgeCutsLayer,
				Start: prev,
				End:   pt,
				Width: hairline,
			})
			prev = pt
		case "OC":
			if inSurfaceForm || !haveFirst {
				continue
			}
			if len(fields) < 6 {
				logger.Debugf("profile: malformed OC at line %d: %q", lineNo, text)
				continue
			}
			end := toPoint(fields[1], fields[2], unit)
			center := toPoint(fields[3], fields[4], unit)
			clockwise := strings.EqualFold(fields[5], "Y")
			mid := geom.ArcCenterToMid(prev, end, center, clockwise)
			items = append(items, model.GraphicItem{
				Type:  model.GraphicArc,
				Layer: EdgeCutsLayer,
				Start: prev,
				Mid:   &mid,
				End:   end,
				Width: hairline,
			})
			prev = end
		case "OE":
			flushClose()
			haveFirst = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func toPoint(xs, ys string, unit geom.Unit) geom.Point {
	x, _ := strconv.ParseFloat(xs, 64)
	y, _ := strconv.ParseFloat(ys, 64)
	return geom.Point{X: geom.ToMM(x, unit), Y: geom.NegateY(geom.ToMM(y, unit))}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
