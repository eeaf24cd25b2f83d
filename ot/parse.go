package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code comments occasionally cite passages from the OpenType specification
// version 1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("SFNT font format: %s", message)
}

// These tables must be present for the font to be usable for cell-width
// classification. A missing tag is a fatal parse error naming the tag.
var RequiredTables = []string{
	"cmap", "hhea", "hmtx", "maxp", "name",
}

// Parse parses an SFNT font from a byte slice.
// A Font needs ongoing access to the font's byte-data after the Parse function
// returns. Its elements are assumed immutable while the Font remains in use.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat("font header truncated")
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	// Create error collector for accumulating errors during parsing
	ec := &errorCollector{}

	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		ec.addError(T(""), "Header", fmt.Sprintf("font type not supported: %x", h.FontType), SeverityCritical, 0)
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries",
	// 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		ec.addError(T(""), "TableRecords", "table record entries", SeverityCritical, 12)
		return nil, errFontFormat("table record entries")
	}
	for b := buf; len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		off, size := u32(b[8:12]), u32(b[12:16])
		// The record's checksum at b[4:8] is not verified; validation is out
		// of scope.
		if off > uint32(len(src)) || uint32(len(src))-off < size {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d",
				off, off+size, len(src)), SeverityCritical, off)
			return nil, errFontFormat(fmt.Sprintf("table %s: bounds [%d:%d] exceed font size %d",
				tag, off, off+size, len(src)))
		}
		if _, ok := otf.tables[tag]; ok {
			// Tags are not guaranteed unique; the first record is authoritative.
			ec.addWarning(tag, "duplicate table record ignored", off)
			continue
		}
		otf.tables[tag], err = parseTable(tag, src[off:off+size], off, size, ec)
		if err != nil {
			return nil, err
		}
	}
	if err := linkTables(otf, ec); err != nil {
		return nil, err
	}

	// Transfer accumulated errors and warnings to the Font
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	if ec.hasWarnings() {
		tracer().Infof("font parsed with %d warning(s)", len(ec.warnings))
	}

	return otf, nil
}

// linkTables checks required tables, stores the typed shortcuts, and performs
// the cross-table wiring: hmtx can only be decoded once the glyph count from
// maxp and the long-metrics count from hhea are known.
func linkTables(otf *Font, ec *errorCollector) error {
	for _, tag := range RequiredTables {
		h := otf.tables[T(tag)]
		if h == nil {
			ec.addError(T(tag), "Missing", "missing required table", SeverityCritical, 0)
			return errFontFormat("missing required table " + tag)
		}
	}
	otf.CMap = otf.tables[T("cmap")].Self().AsCMap()
	otf.MaxP = otf.tables[T("maxp")].Self().AsMaxP()
	otf.HHea = otf.tables[T("hhea")].Self().AsHHea()
	otf.HMtx = otf.tables[T("hmtx")].Self().AsHMtx()
	otf.Name = otf.tables[T("name")].Self().AsName()

	if otf.HHea.NumberOfHMetrics > otf.MaxP.NumGlyphs {
		ec.addError(T("hhea"), "NumberOfHMetrics",
			fmt.Sprintf("value %d exceeds maxp.NumGlyphs %d", otf.HHea.NumberOfHMetrics, otf.MaxP.NumGlyphs),
			SeverityCritical, 0)
		return errFontFormat(fmt.Sprintf("hhea.NumberOfHMetrics (%d) exceeds maxp.NumGlyphs (%d)",
			otf.HHea.NumberOfHMetrics, otf.MaxP.NumGlyphs))
	}
	if err := otf.HMtx.parseAll(otf.MaxP.NumGlyphs, otf.HHea.NumberOfHMetrics); err != nil {
		ec.addError(T("hmtx"), "Metrics", err.Error(), SeverityCritical, 0)
		return err
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("hmtx"):
		return parseHMtx(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("name"):
		return parseName(t, b, offset, size, ec)
	}
	tracer().Infof("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF
// data must use Version 0.5 of this table, specifying only the numGlyphs field.
// Fonts with TrueType outlines must use Version 1.0, where all data is required.
// Only numGlyphs is consumed downstream; the profile fields can be read through
// otquery.MaxPInfo.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		ec.addError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), SeverityCritical, offset)
		return nil, errFontFormat("size of maxp table")
	}
	t := newMaxPTable(tag, b, offset, size)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// The horizontal header table carries shared metrics for horizontal layout.
// numberOfHMetrics sits at offset 34, after the caret fields and four reserved
// 16-bit fields.
func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 36 {
		ec.addError(tag, "Size", fmt.Sprintf("hhea table too small: %d bytes (need 36)", size), SeverityCritical, offset)
		return nil, errFontFormat("hhea table incomplete")
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender, _ = b.i16(4)
	t.Descender, _ = b.i16(6)
	t.LineGap, _ = b.i16(8)
	t.AdvanceWidthMax, _ = b.u16(10)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// The value of the numberOfHMetrics field is found in the 'hhea' table and the
// glyph count in 'maxp', so the actual metric records are decoded later in
// linkTables, once all tables have been located.
func parseHMtx(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size == 0 {
		ec.addError(tag, "Size", "hmtx table empty", SeverityCritical, offset)
		return nil, errFontFormat("hmtx table empty")
	}
	t := newHMtxTable(tag, b, offset, size)
	return t, nil
}
