package main

import (
	"fmt"
	"log"

	"github.com/pcbfab/odbpcb/pkg/odbpcb"
)

func main() {
	parser := odbpcb.NewParser()
	m, err := parser.Parse("board.tgz")
	if err != nil {
		log.Fatal(err)
	}

	// A 10x10mm region near the board origin.
	region := odbpcb.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	entries := odbpcb.Query(m, region)
	fmt.Printf("Entries in region: %d\n", len(entries))

	for _, e := range entries {
		switch e.Kind {
		case odbpcb.KindComponent:
			fmt.Printf("  component: %s\n", m.Components[e.Index].Reference)
		case odbpcb.KindTrace:
			fmt.Printf("  trace on %s\n", m.Traces[e.Index].Layer)
		case odbpcb.KindVia:
			fmt.Printf("  via drill=%.3fmm\n", m.Vias[e.Index].Drill)
		}
	}
}
