// Package symbol decodes ODB++ symbol names into PadDef geometry.
// Symbol names are archive-specific shorthand (e.g. "r100", "rect60x40")
// rather than a fixed standard vocabulary, so the decoder works by
// pattern rather than by loading a fixed lookup table.
package symbol

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pcbfab/odbpcb/internal/geom"
	"github.com/pcbfab/odbpcb/internal/logger"
	"github.com/pcbfab/odbpcb/internal/model"
)

var (
	reRound   = regexp.MustCompile(`^r(\d+(?:\.\d+)?)$`)
	reSquare  = regexp.MustCompile(`^s(\d+(?:\.\d+)?)$`)
	reRect    = regexp.MustCompile(`^rect(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)$`)
	reOval    = regexp.MustCompile(`^oval(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)$`)
	reRound2  = regexp.MustCompile(`^rcr?(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)xr?(\d+(?:\.\d+)?)$`)
	reDonut   = regexp.MustCompile(`^donut_r(\d+(?:\.\d+)?)x(\d+(?:\.\d+)?)$`)
	reThermal = regexp.MustCompile(`^thr?(\d+(?:\.\d+)?)`)
	reLeading = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)
)

// Decoder decodes symbol names into PadDef values, memoizing results.
// It is owned by a single parsing context and is never accessed
// concurrently, so no locking is needed.
type Decoder struct {
	cache        map[string]model.PadDef
	featuresRoot string // directory to probe for a per-symbol "features" file, or ""
	diag         model.DiagFunc
	strict       bool
	err          error // first unresolved-symbol error, set only when strict
}

// NewDecoder returns a Decoder. featuresRoot, if non-empty, is checked
// for a subdirectory per custom symbol name containing a features file
// whose surface outline supplies the custom pad's bounding box. diag,
// if non-nil, records every unresolved symbol lookup.
func NewDecoder(featuresRoot string, diag model.DiagFunc) *Decoder {
	return &Decoder{
		cache:        make(map[string]model.PadDef),
		featuresRoot: featuresRoot,
		diag:         diag,
	}
}

// SetStrict makes every unresolved symbol lookup recorded from this
// point on available through Err, instead of only through diag/logging.
func (d *Decoder) SetStrict(strict bool) {
	d.strict = strict
}

// Err returns the first unresolved-symbol error seen since SetStrict(true),
// or nil if none occurred or strict mode was never enabled.
func (d *Decoder) Err() error {
	return d.err
}

// Decode maps name to a PadDef, memoizing by the original (non-lowered)
// name.
func (d *Decoder) Decode(name string) model.PadDef {
	if def, ok := d.cache[name]; ok {
		return def
	}
	def := d.decode(name)
	d.cache[name] = def
	return def
}

func (d *Decoder) decode(name string) model.PadDef {
	lower := strings.ToLower(strings.TrimSpace(name))

	if m := reRect.FindStringSubmatch(lower); m != nil {
		return model.PadDef{Shape: model.PadRect, Width: mil(m[1]), Height: mil(m[2])}
	}
	if m := reOval.FindStringSubmatch(lower); m != nil {
		return model.PadDef{Shape: model.PadOval, Width: mil(m[1]), Height: mil(m[2])}
	}
	if m := reRound2.FindStringSubmatch(lower); m != nil {
		w, h, c := mil(m[1]), mil(m[2]), mil(m[3])
		minSide := w
		if h < minSide {
			minSide = h
		}
		ratio := 0.5
		if minSide > 0 {
			ratio = 2 * c / minSide
			if ratio > 0.5 {
				ratio = 0.5
			}
			if ratio < 0 {
				ratio = 0
			}
		}
		return model.PadDef{Shape: model.PadRoundRect, Width: w, Height: h, RoundRectRatio: ratio}
	}
	if m := reDonut.FindStringSubmatch(lower); m != nil {
		od := mil(m[1])
		return model.PadDef{Shape: model.PadCircle, Width: od, Height: od}
	}
	if m := reRound.FindStringSubmatch(lower); m != nil {
		dia := mil(m[1])
		return model.PadDef{Shape: model.PadCircle, Width: dia, Height: dia}
	}
	if m := reSquare.FindStringSubmatch(lower); m != nil {
		side := mil(m[1])
		return model.PadDef{Shape: model.PadRect, Width: side, Height: side}
	}
	if m := reThermal.FindStringSubmatch(lower); m != nil {
		dia := mil(m[1])
		return model.PadDef{Shape: model.PadCircle, Width: dia, Height: dia}
	}
	if m := reLeading.FindStringSubmatch(lower); m != nil {
		dia := mil(m[1])
		return model.PadDef{Shape: model.PadCircle, Width: dia, Height: dia}
	}

	logger.Debugf("symbol: %q matched no known pattern, using custom placeholder", name)
	if d.diag != nil {
		d.diag("symbol", name, 0, "unresolved symbol %q, using custom placeholder", name)
	}
	if d.strict && d.err == nil {
		d.err = fmt.Errorf("symbol: unresolved symbol %q", name)
	}
	def := model.PadDef{Shape: model.PadCustom, Width: 1, Height: 1}
	if d.featuresRoot != "" {
		if outline, ok := readCustomOutline(d.featuresRoot, name); ok {
			bounds := geom.BoundsOf(outline...)
			w, h := bounds.Size()
			def.Width, def.Height = w, h
			def.CustomOutline = outline
		}
	}
	return def
}

func mil(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return geom.ToMM(v, geom.Mils)
}
