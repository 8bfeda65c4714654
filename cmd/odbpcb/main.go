// Command odbpcb parses an ODB++ PCB fabrication archive and prints
// the projected JSON model to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/pkg/odbpcb"
)

func main() {
	var (
		step       = flag.String("s", "", "step name to parse (default: first step, sorted)")
		listSteps  = flag.Bool("list-steps", false, "list the archive's steps and exit")
		verbose    = flag.Bool("v", false, "print tolerated-error diagnostics to stderr")
		bboxFlag   = flag.String("bbox", "", "minx,miny,maxx,maxy: restrict placed geometry to this region")
		strict     = flag.Bool("strict-symbols", false, "fail on an unresolved symbol instead of substituting a default")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nParses an ODB++ archive (directory, .tgz, .tar.gz, or .zip) and writes its JSON projection to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	input := flag.Arg(0)

	if *listSteps {
		steps, err := odbpcb.ListSteps(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		for _, s := range steps {
			fmt.Println(s)
		}
		return
	}

	var bbox *odbpcb.Bounds
	if *bboxFlag != "" {
		b, err := parseBBox(*bboxFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: --bbox: %v\n", err)
			os.Exit(1)
		}
		bbox = &b
	}

	parser := odbpcb.NewParser()
	m, err := parser.ParseWithOptions(input, odbpcb.ParseOptions{
		Step:          *step,
		StrictSymbols: *strict,
		Verbose:       *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		for _, d := range m.Diagnostics() {
			fmt.Fprintf(os.Stderr, "[%s] %s:%d: %s\n", d.Stage, d.Path, d.Line, d.Message)
		}
	}

	if err := odbpcb.WriteJSON(os.Stdout, m, bbox); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing JSON: %v\n", err)
		os.Exit(1)
	}
}

func parseBBox(s string) (odbpcb.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return odbpcb.Bounds{}, fmt.Errorf("want minx,miny,maxx,maxy, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return odbpcb.Bounds{}, fmt.Errorf("invalid number %q: %w", p, err)
		}
		vals[i] = v
	}
	return odbpcb.Bounds{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}, nil
}
