package otquery

import (
	"github.com/npillmayer/cellwidth/ot"
	"golang.org/x/image/font/sfnt"
)

// FontMetricsInfo contains selected metric information for a font.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units // design units per em
	Ascent, Descent sfnt.Units // ascender and descender
	MaxAdvance      sfnt.Units // maximum advance width value in 'hmtx' table
	LineGap         sfnt.Units // typographic line gap
}

// FontMetrics retrieves selected metrics of a font from tables 'hhea' and 'head'.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if otf == nil {
		return metrics
	}
	if hhea := otf.HHea; hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if head, ok := HeadInfo(otf); ok {
		metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	}
	return metrics
}

// GlyphIndex returns the glyph index for a given code-point, resolved through
// the unified character map. If the code-point cannot be found, 0 is returned.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	if otf == nil || otf.CMap == nil {
		return 0
	}
	return otf.CMap.Lookup(codepoint)
}

// CodePointForGlyph returns a code-point for a given glyph index.
//
// This is an inefficient operation: all code-points contained in the font's
// character map are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if otf == nil || otf.CMap == nil || gid == 0 {
		return 0
	}
	return otf.CMap.ReverseLookup(gid)
}

// AdvanceWidth retrieves the advance width for a given glyph, in design units.
// Glyph IDs beyond the metrics array clamp to the last recorded advance width.
func AdvanceWidth(otf *ot.Font, gid ot.GlyphIndex) sfnt.Units {
	if otf == nil || otf.HMtx == nil {
		return 0
	}
	return sfnt.Units(otf.HMtx.AdvanceWidth(gid))
}
