package symbol

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/archive"
	"github.com/pcbfab/odbpcb/internal/geom"
)

// readCustomOutline looks for root/<name>/features (case-insensitively)
// and, if present, extracts the single surface's outline as a closed
// polygon, centered on its own bounding-box origin. Coordinates are
// taken as written in the file; no unit conversion is applied.
func readCustomOutline(root, name string) ([]geom.Point, bool) {
	symDir, ok := archive.FindCI(root, name)
	if !ok {
		return nil, false
	}
	featuresPath, ok := archive.FindCI(symDir, "features")
	if !ok {
		return nil, false
	}

	f, err := os.Open(featuresPath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var outline []geom.Point
	var cur geom.Point
	inSurface := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "S":
			inSurface = true
			outline = nil
		case "OB":
			if !inSurface || len(fields) < 3 {
				continue
			}
			cur = geom.Point{X: parseNum(fields[1]), Y: parseNum(fields[2])}
			outline = append(outline, cur)
		case "OS":
			if !inSurface || len(fields) < 3 {
				continue
			}
			cur = geom.Point{X: parseNum(fields[1]), Y: parseNum(fields[2])}
			outline = append(outline, cur)
		case "OE":
			if inSurface && len(outline) > 0 {
				return centerOutline(outline), true
			}
			inSurface = false
		case "SE":
			inSurface = false
		}
	}

	if len(outline) > 0 {
		return centerOutline(outline), true
	}
	return nil, false
}

func centerOutline(pts []geom.Point) []geom.Point {
	bounds := geom.BoundsOf(pts...)
	cx := (bounds.MinX + bounds.MaxX) / 2
	cy := (bounds.MinY + bounds.MaxY) / 2
	centered := make([]geom.Point, len(pts))
	for i, p := range pts {
		centered[i] = geom.Point{X: p.X - cx, Y: p.Y - cy}
	}
	return centered
}

func parseNum(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
