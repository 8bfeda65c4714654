package geom

import "testing"

func TestToMM(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  Unit
		want  float64
	}{
		{"inch", 1, Inches, 25.4},
		{"mil", 1000, Mils, 25.4},
		{"mm passthrough", 12.5, Millimeters, 12.5},
		{"unknown unit passthrough", 3, Unit("parsec"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMM(tt.value, tt.unit); got != tt.want {
				t.Errorf("ToMM(%v, %v) = %v, want %v", tt.value, tt.unit, got, tt.want)
			}
		})
	}
}

func TestToMMIdempotent(t *testing.T) {
	// ToMM(ToMM(x, "mil"), "mm") == ToMM(x, "mil")
	x := 42.0
	once := ToMM(x, Mils)
	twice := ToMM(once, Millimeters)
	if once != twice {
		t.Errorf("ToMM not idempotent on mm: once=%v twice=%v", once, twice)
	}
}

func TestNegateYInvolution(t *testing.T) {
	for _, y := range []float64{0, 1.5, -3.25, 100} {
		if got := NegateY(NegateY(y)); got != y {
			t.Errorf("NegateY(NegateY(%v)) = %v, want %v", y, got, y)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{1.5, "1.5"},
		{0.254, "0.254"},
		{0, "0"},
		{1.1000001, "1.1"},
		{-2.5, "-2.5"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
