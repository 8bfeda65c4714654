// Package eda parses the ODB++ netlist ("eda/data") stanza stream into
// a net table and the per-layer feature-id-to-net cross-reference
// consulted by the per-layer feature parser.
package eda

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
)

// Pin is one PIN record of a package descriptor.
type Pin struct {
	Name string
	Type string
	X, Y float64
}

// Package is one PKG descriptor accumulated while parsing. The package
// table is kept on the Netlist only; no other stage reads it, and
// component pads are built from the component layer instead.
type Package struct {
	Name string
	Pins []Pin
}

// Netlist is the parsed result: the net table, a name-to-index
// dictionary, the per-layer feature-id-to-net cross-reference, and any
// package descriptors.
type Netlist struct {
	Nets        []model.NetDef
	NameToIndex map[string]int
	// FeatureNets maps layer name -> feature id -> net index.
	FeatureNets map[string]map[int]int
	Packages    []Package
}

// Parse reads path (the netlist file) and returns a Netlist seeded
// with the reserved net 0 (unconnected, name "").
func Parse(path string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nl := &Netlist{
		Nets:        []model.NetDef{{Index: 0, Name: ""}},
		NameToIndex: map[string]int{"": 0},
		FeatureNets: map[string]map[int]int{},
	}

	var activeNetIndex = -1
	var activePackage *Package
	inSubnet := false

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, "$") {
			inSubnet = false
			continue
		}

		fields := strings.Fields(text)
		switch fields[0] {
		case "NET":
			if len(fields) < 2 {
				logger.Debugf("eda: malformed NET at line %d: %q", line, text)
				continue
			}
			name := fields[1]
			idx := len(nl.Nets)
			nl.Nets = append(nl.Nets, model.NetDef{Index: idx, Name: name})
			nl.NameToIndex[name] = idx
			activeNetIndex = idx
			inSubnet = false

		case "SNT":
			inSubnet = true

		case "FID":
			if !inSubnet || activeNetIndex < 0 {
				continue
			}
			// FID L <layer_name> <feature_id> [P|T]
			if len(fields) < 4 || fields[1] != "L" {
				logger.Debugf("eda: malformed FID at line %d: %q", line, text)
				continue
			}
			layerName := fields[2]
			featID, err := strconv.Atoi(fields[3])
			if err != nil {
				logger.Debugf("eda: malformed feature id at line %d: %q", line, text)
				continue
			}
			if nl.FeatureNets[layerName] == nil {
				nl.FeatureNets[layerName] = map[int]int{}
			}
			nl.FeatureNets[layerName][featID] = activeNetIndex

		case "PKG":
			if len(fields) < 2 {
				logger.Debugf("eda: malformed PKG at line %d: %q", line, text)
				continue
			}
			nl.Packages = append(nl.Packages, Package{Name: fields[1]})
			activePackage = &nl.Packages[len(nl.Packages)-1]

		case "PIN":
			if activePackage == nil || len(fields) < 5 {
				logger.Debugf("eda: malformed PIN at line %d: %q", line, text)
				continue
			}
			x, _ := strconv.ParseFloat(fields[3], 64)
			y, _ := strconv.ParseFloat(fields[4], 64)
			activePackage.Pins = append(activePackage.Pins, Pin{
				Name: fields[1],
				Type: fields[2],
				X:    x,
				Y:    y,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nl, nil
}

// NetIndex returns the net index for feature id on layerName, defaulting
// to the unconnected net (0) when no cross-reference exists.
func (nl *Netlist) NetIndex(layerName string, featureID int) int {
	if m, ok := nl.FeatureNets[layerName]; ok {
		if idx, ok := m[featureID]; ok {
			return idx
		}
	}
	return 0
}
