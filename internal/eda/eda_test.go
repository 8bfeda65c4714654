package eda

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleNetlist = `
NET GND
SNT
FID L top 0 P
FID L top 1 P
$
NET VCC
SNT
FID L top 2 P
$
PKG R0402
PIN 1 SMD 0.0 0.0
PIN 2 SMD 1.0 0.0
`

func writeNetlist(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseReservesNetZero(t *testing.T) {
	nl, err := Parse(writeNetlist(t, sampleNetlist))
	if err != nil {
		t.Fatal(err)
	}
	if nl.Nets[0].Index != 0 || nl.Nets[0].Name != "" {
		t.Fatalf("net 0 = %+v, want reserved unconnected net", nl.Nets[0])
	}
}

func TestParseNetIndicesContiguous(t *testing.T) {
	nl, err := Parse(writeNetlist(t, sampleNetlist))
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range nl.Nets {
		if n.Index != i {
			t.Errorf("net[%d].Index = %d, want %d", i, n.Index, i)
		}
	}
}

func TestParseFeatureNetCrossReference(t *testing.T) {
	nl, err := Parse(writeNetlist(t, sampleNetlist))
	if err != nil {
		t.Fatal(err)
	}
	gnd := nl.NameToIndex["GND"]
	vcc := nl.NameToIndex["VCC"]

	if got := nl.NetIndex("top", 0); got != gnd {
		t.Errorf("feature 0 net = %d, want %d (GND)", got, gnd)
	}
	if got := nl.NetIndex("top", 2); got != vcc {
		t.Errorf("feature 2 net = %d, want %d (VCC)", got, vcc)
	}
}

func TestParseUnknownFeatureDefaultsUnconnected(t *testing.T) {
	nl, err := Parse(writeNetlist(t, sampleNetlist))
	if err != nil {
		t.Fatal(err)
	}
	if got := nl.NetIndex("top", 999); got != 0 {
		t.Errorf("unknown feature net = %d, want 0", got)
	}
}

func TestParsePackagePins(t *testing.T) {
	nl, err := Parse(writeNetlist(t, sampleNetlist))
	if err != nil {
		t.Fatal(err)
	}
	if len(nl.Packages) != 1 {
		t.Fatalf("packages = %d, want 1", len(nl.Packages))
	}
	if len(nl.Packages[0].Pins) != 2 {
		t.Fatalf("pins = %d, want 2", len(nl.Packages[0].Pins))
	}
}

func TestParseSubnetCloseOnDollar(t *testing.T) {
	const text = `
NET A
SNT
FID L top 0 P
$
FID L top 1 P
`
	nl, err := Parse(writeNetlist(t, text))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := nl.FeatureNets["top"][1]; ok {
		t.Errorf("FID outside subnet after $ should not be recorded")
	}
}
