package main

import (
	"fmt"
	"log"

	"github.com/pcbfab/odbpcb/pkg/odbpcb"
)

func main() {
	steps, err := odbpcb.ListSteps("board.tgz")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Steps: %d\n", len(steps))
	for _, s := range steps {
		fmt.Printf("  %s\n", s)
	}
}
