package cells

import "github.com/npillmayer/cellwidth/ot"

// asciiLimit is the first code point considered for classification. Terminal
// emulators already render ASCII at a fixed width, so code points below U+0080
// never contribute to the histogram.
const asciiLimit = 0x80

// Histogram maps an advance-width value to the code points sharing that
// width. It is built in a single pass over a font's unified character map and
// is read-only afterward.
type Histogram map[uint16][]rune

// BuildHistogram resolves every code point of the font's unified character
// map to a glyph and the glyph's advance width, and accumulates the
// width → code-points histogram.
//
// Code points below U+0080 are skipped (out of scope for terminal cell-width
// overrides), as are code points whose advance width is 0 — typically
// combining marks and other zero-width glyphs, which cannot be expressed as a
// cell-width override. The zero-width rule also drops unmapped intra-segment
// positions which format-4 subtables record as glyph ID 0, since glyph 0
// normally carries the .notdef advance; entries whose .notdef advance is
// non-zero are retained and classified by that advance like any other glyph.
func BuildHistogram(otf *ot.Font) Histogram {
	h := make(Histogram)
	if otf == nil || otf.CMap == nil || otf.HMtx == nil {
		return h
	}
	for r, gid := range otf.CMap.Mappings() {
		if r < asciiLimit {
			continue
		}
		width := otf.HMtx.AdvanceWidth(gid)
		if width == 0 {
			continue
		}
		h[width] = append(h[width], r)
	}
	tracer().Debugf("histogram has %d distinct advance widths", len(h))
	return h
}

// Population returns the number of code points recorded for a width.
func (h Histogram) Population(width uint16) int {
	return len(h[width])
}
