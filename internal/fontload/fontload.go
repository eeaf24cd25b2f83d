// Package fontload builds synthetic single-font SFNT images for tests.
//
// The builders assemble byte-exact table data (big-endian, offset-addressed)
// so that decoder tests can exercise crafted directory layouts, cmap subtable
// formats and metrics arrays without shipping binary font fixtures.
package fontload

import (
	"os"
	"sort"
	"unicode/utf16"
)

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Fixture collects named tables and assembles them into an SFNT image.
type Fixture struct {
	tables []fixtureTable
}

type fixtureTable struct {
	tag  string
	data []byte
}

// AddTable appends a table under a 4-letter tag.
func (fx *Fixture) AddTable(tag string, data []byte) *Fixture {
	fx.tables = append(fx.tables, fixtureTable{tag: tag, data: data})
	return fx
}

// Build assembles the SFNT image: offset table, table records sorted by tag,
// then the table data blocks aligned to 4 bytes. Checksums are left zero.
func (fx *Fixture) Build() []byte {
	n := len(fx.tables)
	sorted := make([]fixtureTable, n)
	copy(sorted, fx.tables)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })

	entrySelector := 0
	for 1<<(entrySelector+1) <= n {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16

	img := appendU32(nil, 0x00010000) // TrueType scaler type
	img = appendU16(img, uint16(n))
	img = appendU16(img, uint16(searchRange))
	img = appendU16(img, uint16(entrySelector))
	img = appendU16(img, uint16(n*16-searchRange))

	offset := 12 + 16*n
	for _, t := range sorted {
		img = append(img, []byte((t.tag + "    ")[:4])...)
		img = appendU32(img, 0) // checksum not verified
		img = appendU32(img, uint32(offset))
		img = appendU32(img, uint32(len(t.data)))
		offset += (len(t.data) + 3) &^ 3
	}
	for _, t := range sorted {
		img = append(img, t.data...)
		for len(img)%4 != 0 {
			img = append(img, 0)
		}
	}
	return img
}

// --- Table builders --------------------------------------------------------

// MaxP builds a version-1.0 'maxp' table with the given glyph count and
// zeroed profile fields.
func MaxP(numGlyphs int) []byte {
	b := appendU32(nil, 0x00010000)
	b = appendU16(b, uint16(numGlyphs))
	for len(b) < 32 {
		b = appendU16(b, 0)
	}
	return b
}

// HHea builds a 36-byte 'hhea' table.
func HHea(ascender, descender, lineGap int16, advanceWidthMax uint16, numberOfHMetrics int) []byte {
	b := appendU32(nil, 0x00010000)
	b = appendU16(b, uint16(ascender))
	b = appendU16(b, uint16(descender))
	b = appendU16(b, uint16(lineGap))
	b = appendU16(b, advanceWidthMax)
	for i := 0; i < 11; i++ { // min bearings, extent, caret, reserved, metricDataFormat
		b = appendU16(b, 0)
	}
	b = appendU16(b, uint16(numberOfHMetrics))
	return b
}

// HMetric is one long horizontal metric record.
type HMetric struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

// HMtx builds an 'hmtx' table from long metric records plus trailing
// left-side bearings for glyphs beyond the explicit run.
func HMtx(metrics []HMetric, trailingLSBs []int16) []byte {
	var b []byte
	for _, m := range metrics {
		b = appendU16(b, m.AdvanceWidth)
		b = appendU16(b, uint16(m.LeftSideBearing))
	}
	for _, lsb := range trailingLSBs {
		b = appendU16(b, uint16(lsb))
	}
	return b
}

// Head builds a minimal 54-byte 'head' table with the magic number and the
// given units per em.
func Head(unitsPerEm uint16) []byte {
	b := appendU32(nil, 0x00010000) // version
	b = appendU32(b, 0)             // fontRevision
	b = appendU32(b, 0)             // checkSumAdjustment
	b = appendU32(b, 0x5F0F3CF5)    // magicNumber
	b = appendU16(b, 0)             // flags
	b = appendU16(b, unitsPerEm)
	for len(b) < 54 {
		b = append(b, 0)
	}
	return b
}

// --- cmap builders ---------------------------------------------------------

// CMapSubtable pairs an encoding record with its subtable data.
type CMapSubtable struct {
	PlatformID uint16
	EncodingID uint16
	Data       []byte
}

// CMap builds a 'cmap' table from subtables, laying them out sequentially
// after the encoding records.
func CMap(subtables ...CMapSubtable) []byte {
	b := appendU16(nil, 0) // version
	b = appendU16(b, uint16(len(subtables)))
	offset := 4 + 8*len(subtables)
	for _, st := range subtables {
		b = appendU16(b, st.PlatformID)
		b = appendU16(b, st.EncodingID)
		b = appendU32(b, uint32(offset))
		offset += len(st.Data)
	}
	for _, st := range subtables {
		b = append(b, st.Data...)
	}
	return b
}

// Segment4 describes one format-4 segment. If GlyphIDs is nil the segment
// maps through its delta; otherwise the glyph IDs are stored in the subtable's
// glyph-ID array and addressed through a non-zero id-range-offset. A zero
// entry in GlyphIDs marks an unmapped position within the segment.
type Segment4 struct {
	Start    uint16
	End      uint16
	Delta    int16
	GlyphIDs []uint16
}

// Format4 builds a segment-delta subtable. The sentinel segment
// (start = end = 0xFFFF) is appended automatically.
func Format4(segments ...Segment4) []byte {
	segs := append(append([]Segment4(nil), segments...), Segment4{Start: 0xFFFF, End: 0xFFFF, Delta: 1})
	segCount := len(segs)

	headerSize := 14
	arraysSize := 2*segCount + 2 + 3*2*segCount
	rangeOffsetBase := headerSize + 2*segCount + 2 + 2*segCount + 2*segCount
	glyphArrayBase := headerSize + arraysSize

	var glyphArray []byte
	rangeOffsets := make([]uint16, segCount)
	glyphOffset := 0
	for i, s := range segs {
		if s.GlyphIDs == nil {
			continue
		}
		// idRangeOffset is relative to the segment's own slot in the
		// range-offset array.
		rangeOffsets[i] = uint16(glyphArrayBase + glyphOffset - (rangeOffsetBase + 2*i))
		for _, gid := range s.GlyphIDs {
			glyphArray = appendU16(glyphArray, gid)
		}
		glyphOffset += 2 * len(s.GlyphIDs)
	}

	length := glyphArrayBase + len(glyphArray)
	b := appendU16(nil, 4) // format
	b = appendU16(b, uint16(length))
	b = appendU16(b, 0) // language
	b = appendU16(b, uint16(2*segCount))
	b = appendU16(b, 0) // searchRange, not consulted by the decoder
	b = appendU16(b, 0) // entrySelector
	b = appendU16(b, 0) // rangeShift
	for _, s := range segs {
		b = appendU16(b, s.End)
	}
	b = appendU16(b, 0) // reservedPad
	for _, s := range segs {
		b = appendU16(b, s.Start)
	}
	for _, s := range segs {
		b = appendU16(b, uint16(s.Delta))
	}
	for _, ro := range rangeOffsets {
		b = appendU16(b, ro)
	}
	return append(b, glyphArray...)
}

// Format6 builds a trimmed-table subtable.
func Format6(firstCode uint16, glyphs []uint16) []byte {
	b := appendU16(nil, 6) // format
	b = appendU16(b, uint16(10+2*len(glyphs)))
	b = appendU16(b, 0) // language
	b = appendU16(b, firstCode)
	b = appendU16(b, uint16(len(glyphs)))
	for _, gid := range glyphs {
		b = appendU16(b, gid)
	}
	return b
}

// Group12 describes one format-12 sequential map group.
type Group12 struct {
	StartCharCode uint32
	EndCharCode   uint32
	StartGlyphID  uint32
}

// Format12 builds a segmented-coverage subtable.
func Format12(groups ...Group12) []byte {
	b := appendU16(nil, 12) // format
	b = appendU16(b, 0)     // reserved
	b = appendU32(b, uint32(16+12*len(groups)))
	b = appendU32(b, 0) // language
	b = appendU32(b, uint32(len(groups)))
	for _, g := range groups {
		b = appendU32(b, g.StartCharCode)
		b = appendU32(b, g.EndCharCode)
		b = appendU32(b, g.StartGlyphID)
	}
	return b
}

// Unsupported builds a subtable stub carrying only a format selector, for
// formats the decoder is expected to skip.
func Unsupported(format uint16) []byte {
	b := appendU16(nil, format)
	b = appendU16(b, 4)
	return b
}

// --- name builder ----------------------------------------------------------

// NameEntry is one 'name' record for the builder. Value is encoded as
// UTF-16BE for Unicode-eligible platform/encoding pairs and as raw bytes
// otherwise.
type NameEntry struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      string
}

// Name builds a 'name' table with its string storage immediately after the
// record list.
func Name(entries ...NameEntry) []byte {
	var storage []byte
	type placed struct {
		entry  NameEntry
		offset int
		length int
	}
	records := make([]placed, 0, len(entries))
	for _, e := range entries {
		var raw []byte
		if e.PlatformID == 0 || (e.PlatformID == 3 && e.EncodingID == 1) {
			for _, u := range utf16.Encode([]rune(e.Value)) {
				raw = appendU16(raw, u)
			}
		} else {
			raw = []byte(e.Value)
		}
		records = append(records, placed{entry: e, offset: len(storage), length: len(raw)})
		storage = append(storage, raw...)
	}

	stringOffset := 6 + 12*len(entries)
	b := appendU16(nil, 0) // format
	b = appendU16(b, uint16(len(entries)))
	b = appendU16(b, uint16(stringOffset))
	for _, p := range records {
		b = appendU16(b, p.entry.PlatformID)
		b = appendU16(b, p.entry.EncodingID)
		b = appendU16(b, p.entry.LanguageID)
		b = appendU16(b, p.entry.NameID)
		b = appendU16(b, uint16(p.length))
		b = appendU16(b, uint16(p.offset))
	}
	return append(b, storage...)
}

// --- Convenience -----------------------------------------------------------

// LoadFontImage reads a font file into memory.
func LoadFontImage(fontfile string) ([]byte, error) {
	return os.ReadFile(fontfile)
}
