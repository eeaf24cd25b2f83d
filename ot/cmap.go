package ot

import "fmt"

// This table defines the mapping of character codes to glyph indices. Different
// subtables may be defined that each contain mappings for different character
// encoding schemes. The table header indicates the character encodings for which
// subtables are present.
//
// The various cmap formats are described at
// https://www.microsoft.com/typography/otspec/cmap.htm
//
// We decode subtable formats 4 (segment mapping with delta), 6 (trimmed table)
// and 12 (segmented coverage). Other formats are detected and skipped with a
// warning: a font may expose multiple redundant encodings and only one usable
// format is required.

// Platform IDs and Platform Specific IDs as per
// https://www.microsoft.com/typography/otspec/name.htm
const (
	pidUnicode   = 0
	pidMacintosh = 1
	pidWindows   = 3

	psidWindowsUCS2 = 1
)

const (
	// This value is arbitrary, but defends against parsing malicious font
	// files causing excessive memory allocations. For reference, Adobe's
	// SourceHanSansSC-Regular.otf has 65535 glyphs and:
	//	- its format-4  cmap table has  1581 segments.
	//	- its format-12 cmap table has 16498 segments.
	maxCMapSegments = 20000
)

// CMapTable represents an SFNT cmap table, i.e. the table to receive glyphs
// from code-points.
type CMapTable struct {
	tableBase
	Version         uint16
	EncodingRecords []EncodingRecord
	unified         map[rune]GlyphIndex
}

// EncodingRecord is one entry of the cmap header's subtable list. Offset is
// relative to the cmap table base. Mapping is nil for subtables in a format
// other than 4, 6 or 12.
type EncodingRecord struct {
	PlatformID uint16
	EncodingID uint16
	Offset     uint32
	Format     uint16
	Mapping    map[rune]GlyphIndex
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// Mappings returns the unified code-point → glyph-ID mapping across all
// decoded subtables. Subtables are merged in encoding-record order; later
// subtables silently overwrite earlier entries for the same code point.
// The returned map is shared and must be treated as read-only.
func (t *CMapTable) Mappings() map[rune]GlyphIndex {
	if t == nil {
		return nil
	}
	return t.unified
}

// Lookup returns the glyph index for a given code-point, consulting the
// unified mapping. If the code-point cannot be found, 0 is returned.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil {
		return 0
	}
	return t.unified[r]
}

// ReverseLookup returns a code-point mapping to a given glyph index.
//
// This is an inefficient operation: all code-points contained in the unified
// mapping are checked sequentially. If several code points map to the glyph,
// the smallest is returned; if none does, 0 is returned.
func (t *CMapTable) ReverseLookup(gid GlyphIndex) rune {
	if t == nil || gid == 0 {
		return 0
	}
	var found rune
	for r, g := range t.unified {
		if g == gid && (found == 0 || r < found) {
			found = r
		}
	}
	return found
}

// parseCMap reads the cmap header and, per encoding record, dispatches to a
// format decoder. Subtables in unsupported formats contribute nothing to the
// unified mapping; their absence is recorded as a warning.
func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	const headerSize, entrySize = 4, 8
	if len(b) < headerSize {
		ec.addError(tag, "Header", "cmap header truncated", SeverityCritical, offset)
		return nil, errFontFormat("cmap header truncated")
	}
	t := newCMapTable(tag, b, offset, size)
	t.Version, _ = b.u16(0)
	n, _ := b.u16(2) // number of sub-tables
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, len(b))
	requiredSize := headerSize + entrySize*int(n)
	if len(b) < requiredSize {
		ec.addError(tag, "Header", fmt.Sprintf("%d encoding records need %d bytes, have %d",
			n, requiredSize, len(b)), SeverityCritical, offset)
		return nil, errFontFormat("size of cmap table")
	}
	t.EncodingRecords = make([]EncodingRecord, 0, n)
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		enc := EncodingRecord{
			PlatformID: rec.U16(0),
			EncodingID: rec.U16(2),
			Offset:     rec.U32(4),
		}
		if int(enc.Offset)+2 > len(b) {
			ec.addError(tag, "EncodingRecord",
				fmt.Sprintf("subtable %d offset %d out of bounds", i, enc.Offset),
				SeverityCritical, offset)
			return nil, errFontFormat("cmap subtable offset out of bounds")
		}
		subtable := b[enc.Offset:]
		enc.Format = u16(subtable)
		var err error
		switch enc.Format {
		case 4:
			enc.Mapping, err = decodeCMapFormat4(subtable)
		case 6:
			enc.Mapping, err = decodeCMapFormat6(subtable)
		case 12:
			enc.Mapping, err = decodeCMapFormat12(subtable)
		default:
			tracer().Infof("cmap subtable format %d not supported, skipping", enc.Format)
			ec.addWarning(tag, fmt.Sprintf("subtable %d (platform=%d, encoding=%d) has unsupported format %d",
				i, enc.PlatformID, enc.EncodingID, enc.Format), offset+enc.Offset)
		}
		if err != nil {
			ec.addError(tag, fmt.Sprintf("Format%d", enc.Format), err.Error(),
				SeverityCritical, offset+enc.Offset)
			return nil, err
		}
		t.EncodingRecords = append(t.EncodingRecords, enc)
	}
	t.unified = make(map[rune]GlyphIndex)
	for _, enc := range t.EncodingRecords {
		for r, gid := range enc.Mapping {
			t.unified[r] = gid
		}
	}
	if len(t.unified) == 0 {
		ec.addWarning(tag, "no decodable cmap subtable found", offset)
	}
	return t, nil
}

// decodeCMapFormat4 decodes a segment-delta subtable. The subtable consists of
// four parallel arrays of segCount entries — end codes, start codes, signed
// id-deltas, id-range-offsets — followed by a glyph-ID array. The last segment
// is a sentinel (start = end = 0xFFFF) and carries no mapping.
func decodeCMapFormat4(b binarySegm) (map[rune]GlyphIndex, error) {
	const headerSize = 14
	if len(b) < headerSize {
		return nil, errFontFormat("cmap format 4 header truncated")
	}
	segCountX2, _ := b.u16(6)
	if segCountX2&1 != 0 {
		return nil, errFontFormat("cmap format 4 segment count not even")
	}
	segCount := int(segCountX2 / 2)
	if segCount == 0 {
		return nil, errFontFormat("cmap format 4 has no segments")
	}
	if segCount > maxCMapSegments {
		return nil, errFontFormat(fmt.Sprintf("more than %d cmap segments not supported", maxCMapSegments))
	}
	// end codes, reserved pad, start codes, deltas, range offsets
	arraysSize := 2*segCount + 2 + 3*2*segCount
	if headerSize+arraysSize > len(b) {
		return nil, errFontFormat("cmap format 4 segment arrays truncated")
	}
	endBase := headerSize
	startBase := endBase + 2*segCount + 2 // skip reserved pad
	deltaBase := startBase + 2*segCount
	rangeOffsetBase := deltaBase + 2*segCount

	mapping := make(map[rune]GlyphIndex)
	for i := 0; i < segCount-1; i++ { // last segment is the sentinel
		end, _ := b.u16(endBase + 2*i)
		start, _ := b.u16(startBase + 2*i)
		delta, _ := b.i16(deltaBase + 2*i)
		rangeOffset, _ := b.u16(rangeOffsetBase + 2*i)
		if start > end {
			return nil, errFontFormat(fmt.Sprintf("cmap format 4 segment %d start > end", i))
		}
		for c := uint32(start); c <= uint32(end); c++ {
			if rangeOffset == 0 {
				mapping[rune(c)] = GlyphIndex(uint16(c) + uint16(delta))
				continue
			}
			// The offset addresses the glyph-ID array relative to the
			// segment's own slot in the range-offset array.
			pos := rangeOffsetBase + 2*i + int(rangeOffset) + 2*int(c-uint32(start))
			gid, err := b.u16(pos)
			if err != nil {
				return nil, errFontFormat(fmt.Sprintf("cmap format 4 glyph-ID array index out of bounds (segment %d)", i))
			}
			if gid == 0 {
				// Intra-segment unmapped position; the delta must not be applied.
				mapping[rune(c)] = 0
				continue
			}
			mapping[rune(c)] = GlyphIndex(gid + uint16(delta))
		}
	}
	return mapping, nil
}

// decodeCMapFormat6 decodes a trimmed-table subtable: a dense run of glyph IDs
// starting at a first code point.
func decodeCMapFormat6(b binarySegm) (map[rune]GlyphIndex, error) {
	const headerSize = 10
	if len(b) < headerSize {
		return nil, errFontFormat("cmap format 6 header truncated")
	}
	firstCode, _ := b.u16(6)
	entryCount, _ := b.u16(8)
	if headerSize+2*int(entryCount) > len(b) {
		return nil, errFontFormat("cmap format 6 glyph array truncated")
	}
	mapping := make(map[rune]GlyphIndex, entryCount)
	for i := 0; i < int(entryCount); i++ {
		gid, _ := b.u16(headerSize + 2*i)
		mapping[rune(uint32(firstCode)+uint32(i))] = GlyphIndex(gid)
	}
	return mapping, nil
}

// decodeCMapFormat12 decodes a segmented-coverage subtable: sequential groups
// of (startCharCode, endCharCode, startGlyphID), all 32-bit. This format
// covers code points beyond the 16-bit range, e.g. CJK extensions and emoji.
func decodeCMapFormat12(b binarySegm) (map[rune]GlyphIndex, error) {
	const headerSize = 16
	if len(b) < headerSize {
		return nil, errFontFormat("cmap format 12 header truncated")
	}
	numGroups, _ := b.u32(12)
	if numGroups > maxCMapSegments {
		return nil, errFontFormat(fmt.Sprintf("more than %d cmap segments not supported", maxCMapSegments))
	}
	if headerSize+12*int(numGroups) > len(b) {
		return nil, errFontFormat("cmap format 12 group array truncated")
	}
	mapping := make(map[rune]GlyphIndex)
	for i := 0; i < int(numGroups); i++ {
		start, _ := b.u32(headerSize + 12*i)
		end, _ := b.u32(headerSize + 12*i + 4)
		startGID, _ := b.u32(headerSize + 12*i + 8)
		if start > end {
			return nil, errFontFormat(fmt.Sprintf("cmap format 12 group %d start > end", i))
		}
		if start > maxCodepoint {
			tracer().Infof("cmap format 12 group %d beyond Unicode range, skipping", i)
			continue
		}
		if end > maxCodepoint {
			end = maxCodepoint
		}
		for c := start; c <= end; c++ {
			mapping[rune(c)] = GlyphIndex(startGID + (c - start))
		}
	}
	return mapping, nil
}

// maxCodepoint is the highest valid Unicode scalar value.
const maxCodepoint = 0x10FFFF
