package main

import (
	"fmt"
	"log"

	"github.com/pcbfab/odbpcb/pkg/odbpcb"
)

func main() {
	// Create parser
	parser := odbpcb.NewParser()

	// Parse an ODB++ archive (directory, .tgz, .tar.gz, or .zip)
	m, err := parser.Parse("board.tgz")
	if err != nil {
		log.Fatal(err)
	}

	// Print board info
	fmt.Printf("Layers: %d\n", len(m.Layers))
	fmt.Printf("Nets: %d\n", len(m.Nets))
	fmt.Printf("Components: %d\n", len(m.Components))
	fmt.Printf("Traces: %d, Arcs: %d, Vias: %d, Zones: %d\n",
		len(m.Traces), len(m.Arcs), len(m.Vias), len(m.Zones))

	fmt.Printf("Bounds: [%.3f,%.3f] to [%.3f,%.3f] mm\n",
		m.Bounds.MinX, m.Bounds.MinY, m.Bounds.MaxX, m.Bounds.MaxY)
}
