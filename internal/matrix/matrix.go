// Package matrix parses the ODB++ matrix/matrix stack file into typed
// layer definitions and assigns KiCad-compatible editor names and ids.
package matrix

import (
	"bufio"
	"os"
	"strings"

	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
)

// rawLayer is one LAYER { ... } stanza before classification.
type rawLayer struct {
	name     string
	typ      string
	polarity string
}

// Parse reads path (matrix/matrix) and returns the classified,
// editor-named layer stack in declaration order.
func Parse(path string) ([]model.LayerDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raws, err := parseStanzas(f)
	if err != nil {
		return nil, err
	}
	return classify(raws), nil
}

func parseStanzas(f *os.File) ([]rawLayer, error) {
	var layers []rawLayer
	scanner := bufio.NewScanner(f)

	var current *rawLayer
	inLayer := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "LAYER"):
			current = &rawLayer{}
			inLayer = true
		case strings.HasPrefix(line, "STEP"):
			inLayer = false
			current = nil
		case line == "}":
			if current != nil {
				layers = append(layers, *current)
			}
			current = nil
			inLayer = false
		case inLayer && current != nil:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				logger.Debugf("matrix: skipping unparseable line %q", line)
				continue
			}
			key = strings.ToUpper(strings.TrimSpace(key))
			value = strings.TrimSpace(value)
			switch key {
			case "NAME":
				current.name = value
			case "TYPE":
				current.typ = strings.ToUpper(value)
			case "POLARITY":
				current.polarity = strings.ToUpper(value)
			}
		}
	}
	return layers, scanner.Err()
}

func normalizeType(t string) string {
	switch t {
	case "POWER_GROUND":
		return "POWER"
	case "ROUT":
		return "DRILL"
	default:
		return t
	}
}

func classify(raws []rawLayer) []model.LayerDef {
	// First pass: count copper layers to know N for F.Cu/B.Cu/In<k>.
	copperIdx := make([]int, 0, len(raws))
	for i, r := range raws {
		switch normalizeType(r.typ) {
		case "SIGNAL", "POWER", "MIXED":
			copperIdx = append(copperIdx, i)
		}
	}
	n := len(copperIdx)
	copperOrderOf := make(map[int]int, n)
	for order, i := range copperIdx {
		copperOrderOf[i] = order
	}

	defs := make([]model.LayerDef, len(raws))
	for i, r := range raws {
		t := normalizeType(r.typ)
		side := inferSide(r.name)
		def := model.LayerDef{
			ODBName:     r.name,
			Type:        mapLayerType(t),
			Side:        side,
			CopperOrder: -1,
			Polarity:    mapPolarity(r.polarity),
		}

		if order, ok := copperOrderOf[i]; ok {
			def.CopperOrder = order
			switch {
			case order == 0:
				def.KiCadName = "F.Cu"
				def.LayerID = 0
			case order == n-1:
				def.KiCadName = "B.Cu"
				def.LayerID = 2
			default:
				def.KiCadName = innerName(order)
				def.LayerID = 2 + 2*order
			}
		} else {
			def.KiCadName = nonCopperName(def.Type, side, r.name)
		}

		defs[i] = def
	}
	return defs
}

func innerName(order int) string {
	return "In" + itoa(order) + ".Cu"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func inferSide(odbName string) model.LayerSide {
	lower := strings.ToLower(odbName)
	for _, needle := range []string{"top", "front", "comp"} {
		if strings.Contains(lower, needle) {
			return model.SideTop
		}
	}
	return model.SideBottom
}

func mapLayerType(t string) model.LayerType {
	switch t {
	case "SIGNAL":
		return model.LayerSignal
	case "POWER":
		return model.LayerPower
	case "MIXED":
		return model.LayerMixed
	case "SOLDER_MASK":
		return model.LayerSolderMask
	case "SILK_SCREEN":
		return model.LayerSilkscreen
	case "SOLDER_PASTE":
		return model.LayerSolderPaste
	case "COMPONENT":
		return model.LayerComponent
	case "DRILL":
		return model.LayerDrill
	case "DOCUMENT":
		return model.LayerDocument
	default:
		return model.LayerOther
	}
}

func mapPolarity(p string) model.Polarity {
	if p == "NEGATIVE" {
		return model.Negative
	}
	return model.Positive
}

func nonCopperName(t model.LayerType, side model.LayerSide, odbName string) string {
	top := side == model.SideTop
	switch t {
	case model.LayerSolderMask:
		if top {
			return "F.Mask"
		}
		return "B.Mask"
	case model.LayerSilkscreen:
		if top {
			return "F.SilkS"
		}
		return "B.SilkS"
	case model.LayerSolderPaste:
		if top {
			return "F.Paste"
		}
		return "B.Paste"
	case model.LayerComponent:
		if top {
			return "F.Fab"
		}
		return "B.Fab"
	case model.LayerDrill:
		return "drill"
	default:
		return "User." + odbName
	}
}
