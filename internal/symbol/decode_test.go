package symbol

import (
	"math"
	"testing"

	"github.com/pcbfab/odbpcb/internal/model"
)

func TestDecodeRound(t *testing.T) {
	d := NewDecoder("", nil)
	def := d.Decode("r100")
	if def.Shape != model.PadCircle {
		t.Fatalf("shape = %v, want circle", def.Shape)
	}
	want := 100 * 0.0254
	if math.Abs(def.Width-want) > 1e-9 {
		t.Errorf("width = %v, want %v", def.Width, want)
	}
}

func TestDecodeSquare(t *testing.T) {
	def := NewDecoder("", nil).Decode("s60")
	if def.Shape != model.PadRect {
		t.Fatalf("shape = %v, want rect", def.Shape)
	}
	if def.Width != def.Height {
		t.Errorf("square should have width == height, got %v/%v", def.Width, def.Height)
	}
}

func TestDecodeRect(t *testing.T) {
	def := NewDecoder("", nil).Decode("rect80x40")
	if def.Shape != model.PadRect {
		t.Fatalf("shape = %v, want rect", def.Shape)
	}
	if def.Width <= def.Height {
		t.Errorf("expected width > height, got %v/%v", def.Width, def.Height)
	}
}

func TestDecodeOval(t *testing.T) {
	def := NewDecoder("", nil).Decode("oval50x30")
	if def.Shape != model.PadOval {
		t.Fatalf("shape = %v, want oval", def.Shape)
	}
}

func TestDecodeRoundRectRatioCapped(t *testing.T) {
	def := NewDecoder("", nil).Decode("rc100x100x100")
	if def.Shape != model.PadRoundRect {
		t.Fatalf("shape = %v, want roundrect", def.Shape)
	}
	if def.RoundRectRatio != 0.5 {
		t.Errorf("ratio = %v, want capped at 0.5", def.RoundRectRatio)
	}
}

func TestDecodeRoundRectRatio(t *testing.T) {
	def := NewDecoder("", nil).Decode("rc100x100x10")
	want := 2 * (10 * 0.0254) / (100 * 0.0254)
	if math.Abs(def.RoundRectRatio-want) > 1e-9 {
		t.Errorf("ratio = %v, want %v", def.RoundRectRatio, want)
	}
}

func TestDecodeDonutUsesOuterDiameter(t *testing.T) {
	def := NewDecoder("", nil).Decode("donut_r100x50")
	want := 100 * 0.0254
	if math.Abs(def.Width-want) > 1e-9 {
		t.Errorf("width = %v, want outer diameter %v", def.Width, want)
	}
}

func TestDecodeThermalCollapsesToCircle(t *testing.T) {
	def := NewDecoder("", nil).Decode("thr80x80x4x4")
	if def.Shape != model.PadCircle {
		t.Fatalf("shape = %v, want circle", def.Shape)
	}
}

func TestDecodeLeadingDigitFallback(t *testing.T) {
	def := NewDecoder("", nil).Decode("70_special")
	if def.Shape != model.PadCircle {
		t.Fatalf("shape = %v, want circle fallback", def.Shape)
	}
}

func TestDecodeUnknownIsCustomPlaceholder(t *testing.T) {
	def := NewDecoder("", nil).Decode("totally_unrecognized")
	if def.Shape != model.PadCustom {
		t.Fatalf("shape = %v, want custom", def.Shape)
	}
	if def.Width != 1 || def.Height != 1 {
		t.Errorf("expected 1x1 placeholder, got %vx%v", def.Width, def.Height)
	}
}

func TestDecodeMemoizes(t *testing.T) {
	d := NewDecoder("", nil)
	a := d.Decode("r100")
	b := d.Decode("r100")
	if a != b {
		t.Errorf("expected memoized decode to be equal, got %+v vs %+v", a, b)
	}
	if len(d.cache) != 1 {
		t.Errorf("cache size = %d, want 1", len(d.cache))
	}
}

func TestDecodeCaseInsensitive(t *testing.T) {
	d := NewDecoder("", nil)
	a := d.Decode("R100")
	b := d.Decode("r100")
	if a.Shape != b.Shape || a.Width != b.Width {
		t.Errorf("expected case-insensitive match to decode identically")
	}
}
