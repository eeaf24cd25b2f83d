/*
Package cellwidth determines, for every Unicode code point a font supports,
how many terminal display cells it should occupy.

The package decodes the subset of SFNT (TrueType/OpenType) tables needed for
that question — the table directory, 'maxp', 'hhea', 'hmtx', 'cmap' and
'name' — and classifies each mapped code point by its glyph's advance width.
The two dominant advance widths partition the font's repertoire into a
narrower class (1 cell) and a wider class (2 cells), each compressed into
minimal inclusive code-point ranges.

Decoding is a pure function of an immutable input buffer: no I/O, no shared
mutable state, no concurrency. Glyph outlines, hinting programs and advanced
layout tables are out of scope.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cellwidth

import (
	"errors"

	"github.com/npillmayer/cellwidth/cells"
	"github.com/npillmayer/cellwidth/ot"
	"github.com/npillmayer/cellwidth/otquery"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'cellwidth'
func tracer() tracing.Trace {
	return tracing.Select("cellwidth")
}

// ErrNoFontName is returned when no name record decodes to a usable family
// name. A font without a name cannot be reported on, so the overall pipeline
// treats this as fatal.
var ErrNoFontName = errors.New("font has no decodable family name")

// FromBinary parses raw SFNT bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream. It
// must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// FamilyName extracts the family name from a font's `name` table: the first
// record with name ID 1 decoding to non-empty text.
func FamilyName(otf *ot.Font) (string, error) {
	name, ok := otquery.FamilyName(otf)
	if !ok {
		return "", ErrNoFontName
	}
	return name, nil
}

// Classify maps the font's supported code points to cell-width classes: an
// ordered list of inclusive ranges, class-1 (narrower) ranges first, then
// class-2 (wider) ones.
func Classify(otf *ot.Font) ([]cells.Range, error) {
	histogram := cells.BuildHistogram(otf)
	ranges, err := cells.Classify(histogram)
	if err != nil {
		return nil, err
	}
	tracer().Infof("font classified into %d cell-width ranges", len(ranges))
	return ranges, nil
}
