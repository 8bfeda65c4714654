// Package component parses the ODB++ component-side layers (top and
// bottom) into ComponentInstance values with their footprints' pads in
// world coordinates, ready for the model assembler to bind and the
// projector to rebase to footprint-local space.
package component

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/eda"
	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
)

const defaultPadDiameterMM = 0.5

// Parse reads path (a side's components file) and returns the
// component instances it declares, along with the footprints built
// from each component's pins, keyed by footprint name.
//
// side determines which editor layer triple (F.* or B.*) pads are
// tagged with and what model.Side is recorded on each instance; a CMP
// record whose mirror flag is set flips it to the opposite side.
func Parse(path string, unit geom.Unit, side model.Side, net *eda.Netlist) ([]model.ComponentInstance, map[string]*model.Footprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	footprints := map[string]*model.Footprint{}
	var components []model.ComponentInstance

	var current *model.ComponentInstance
	var currentFootprintName string
	var pins []model.FootprintPad

	flush := func() {
		if current == nil {
			return
		}
		fpName := currentFootprintName
		if fp, ok := footprints[fpName]; ok {
			current.Footprint = fp
		} else {
			fp := &model.Footprint{Name: fpName, Pads: pins}
			footprints[fpName] = fp
			current.Footprint = fp
		}
		current.FootprintName = fpName
		components = append(components, *current)
		current = nil
		pins = nil
	}

	recordPinNet := func(pinNum, netName string) {
		if current.PinNets == nil {
			current.PinNets = map[string]string{}
		}
		current.PinNets[pinNum] = netName
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
		case "CMP":
			flush()
			if len(fields) < 7 {
				logger.Debugf("component: malformed CMP at %s:%d: %q", path, lineNo, text)
				continue
			}
			x, _ := strconv.ParseFloat(fields[2], 64)
			y, _ := strconv.ParseFloat(fields[3], 64)
			rot, _ := strconv.ParseFloat(fields[4], 64)
			mirror := fields[5] == "1" || strings.EqualFold(fields[5], "M")
			compName := fields[6]

			compSide := side
			if mirror {
				if side == model.Top {
					compSide = model.Bottom
				} else {
					compSide = model.Top
				}
			}

			ref := refFromTrailer(fields, compName)
			current = &model.ComponentInstance{
				Reference:  ref,
				Pos:        geom.Point{X: geom.ToMM(x, unit), Y: geom.NegateY(geom.ToMM(y, unit))},
				Rotation:   rot,
				Side:       compSide,
				Properties: map[string]string{},
			}
			currentFootprintName = compName

		case "TOP", "BOT":
			// pin_num x y rot mirror net_num pad_usage
			if current == nil || len(fields) < 7 {
				logger.Debugf("component: malformed pin record at %s:%d: %q", path, lineNo, text)
				continue
			}
			pinNum := fields[1]
			x, _ := strconv.ParseFloat(fields[2], 64)
			y, _ := strconv.ParseFloat(fields[3], 64)
			netNum, _ := strconv.Atoi(fields[6])

			netName := ""
			if net != nil {
				for _, n := range net.Nets {
					if n.Index == netNum {
						netName = n.Name
					}
				}
			}

			padType := model.PadSMD
			layers := frontLayers
			if current.Side == model.Bottom {
				layers = backLayers
			}

			pins = append(pins, model.FootprintPad{
				Number:   pinNum,
				Def:      model.PadDef{Shape: model.PadCircle, Width: defaultPadDiameterMM, Height: defaultPadDiameterMM},
				Pos:      geom.Point{X: geom.ToMM(x, unit), Y: geom.NegateY(geom.ToMM(y, unit))},
				NetIndex: netNum,
				NetName:  netName,
				Type:     padType,
				Layers:   layers,
			})
			recordPinNet(pinNum, netName)

		case "PRP":
			if current == nil || len(fields) < 3 {
				logger.Debugf("component: malformed PRP at %s:%d: %q", path, lineNo, text)
				continue
			}
			key := fields[1]
			value := strings.Trim(strings.Join(fields[2:], " "), "'\"")
			current.Properties[key] = value
			if key == "COMP_PACKAGE_NAME" && value != "" {
				currentFootprintName = value
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return components, footprints, nil
}

var frontLayers = []string{"F.Cu", "F.Paste", "F.Mask"}
var backLayers = []string{"B.Cu", "B.Paste", "B.Mask"}

// refFromTrailer extracts "REF=..." from a trailing "; REF=... | ID=..."
// clause, falling back to the raw component name.
func refFromTrailer(fields []string, fallback string) string {
	for _, f := range fields {
		if strings.HasPrefix(f, "REF=") {
			return strings.TrimPrefix(f, "REF=")
		}
		if strings.HasPrefix(f, "ID=") {
			return strings.TrimPrefix(f, "ID=")
		}
	}
	return fallback
}
