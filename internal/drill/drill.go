// Package drill parses an ODB++ drill layer's tool table and feature
// file into Via values with an estimated annular ring.
package drill

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/eda"
	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
	"github.com/pcbfab/odbpcb/internal/records"
	"github.com/pcbfab/odbpcb/internal/symbol"
)

const (
	defaultDrillMM = 0.3
	annularRingMM  = 0.2
)

// Tools maps a tool number to its diameter in mm.
type Tools map[int]float64

// ParseTools reads path (a drill layer's "tools" file): lines of the
// form "T<num> <diameter> ...". diag, if non-nil, records malformed
// lines.
func ParseTools(path string, unit geom.Unit, diag model.DiagFunc) (Tools, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tools := Tools{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || !strings.HasPrefix(text, "T") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			logger.Debugf("drill: malformed tool line at %s:%d: %q", path, lineNo, text)
			if diag != nil {
				diag("drill", path, lineNo, "malformed tool line: %q", text)
			}
			continue
		}
		numStr := strings.TrimPrefix(fields[0], "T")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			logger.Debugf("drill: malformed tool number at %s:%d: %q", path, lineNo, text)
			if diag != nil {
				diag("drill", path, lineNo, "malformed tool number: %q", text)
			}
			continue
		}
		dia, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			logger.Debugf("drill: malformed tool diameter at %s:%d: %q", path, lineNo, text)
			if diag != nil {
				diag("drill", path, lineNo, "malformed tool diameter: %q", text)
			}
			continue
		}
		tools[num] = geom.ToMM(dia, unit)
	}
	return tools, scanner.Err()
}

// ParseFeatures reads path (a drill layer's "features" file) and
// returns the vias it declares. odbLayer is the drill layer's own
// archive name, used to key the EDA feature-id-to-net cross-reference
// (a drill layer's FID records are keyed by its own name, not by the
// copper layers it spans). startLayer/endLayer are the editor layer
// pair vias on this drill layer span by default.
func ParseFeatures(path string, unit geom.Unit, tools Tools, decoder *symbol.Decoder, net *eda.Netlist, odbLayer, startLayer, endLayer string, diag model.DiagFunc) ([]model.Via, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	localSyms, body := records.ReadSymbolTable(scanner)

	var vias []model.Via
	featureID := 0

	for _, pl := range body {
		fields := strings.Fields(pl.Text)
		if len(fields) == 0 || fields[0] != "P" {
			continue
		}
		if len(fields) < 4 {
			logger.Debugf("drill: malformed P record at %s:%d: %q", path, pl.Number, pl.Text)
			if diag != nil {
				diag("drill", path, pl.Number, "malformed P record: %q", pl.Text)
			}
			continue
		}

		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		symField := fields[3]

		drillDia := resolveDrillDiameter(symField, localSyms, tools, decoder)

		netIdx := 0
		if net != nil {
			netIdx = net.NetIndex(odbLayer, featureID)
		}
		featureID++

		pos := geom.Point{X: geom.ToMM(x, unit), Y: geom.NegateY(geom.ToMM(y, unit))}
		outer := drillDia + annularRingMM
		vias = append(vias, model.Via{
			Pos:        pos,
			Diameter:   outer,
			Drill:      drillDia,
			NetIndex:   netIdx,
			StartLayer: startLayer,
			EndLayer:   endLayer,
			Bounds:     geom.BoundsOf(pos).Expand(outer / 2),
		})
	}
	return vias, scanner.Err()
}

func resolveDrillDiameter(symField string, local records.SymbolTable, tools Tools, decoder *symbol.Decoder) float64 {
	idx, err := strconv.Atoi(symField)
	if err != nil {
		return defaultDrillMM
	}
	if dia, ok := tools[idx]; ok {
		return dia
	}
	if name, ok := local[idx]; ok {
		def := decoder.Decode(name)
		if def.Width > 0 {
			return def.Width
		}
	}
	logger.Debugf("drill: symbol/tool index %d unresolved, using default diameter", idx)
	return defaultDrillMM
}
