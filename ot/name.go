package ot

import "fmt"

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// NameTable represents an SFNT 'name' table: a list of platform-tagged string
// records plus a string-storage block. Record fields are decoded here; the
// strings themselves are raw bytes whose interpretation depends on the
// record's platform/encoding pair, so textual decoding is left to clients
// (see package otquery).
type NameTable struct {
	tableBase
	Format       uint16
	StringOffset uint16
	Records      []NameRecord
}

// NameRecord is one entry of the name table's record list. Length and Offset
// locate the record's string within the table's string-storage block.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Length     uint16
	Offset     uint16
}

// IsUnicode reports whether the record's string is big-endian UTF-16 text,
// i.e. whether the record qualifies for textual decoding. This is the case
// for platform 0 (Unicode) and for platform 3 encoding 1 (Windows, Unicode
// BMP); other platform/encoding pairs would need platform-specific codec
// tables and keep an empty decoded string.
func (rec NameRecord) IsUnicode() bool {
	return rec.PlatformID == pidUnicode ||
		(rec.PlatformID == pidWindows && rec.EncodingID == psidWindowsUCS2)
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
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

// StringBytes returns the raw string bytes for a record, read from the
// string-storage block.
func (t *NameTable) StringBytes(rec NameRecord) ([]byte, error) {
	if t == nil {
		return nil, errFontFormat("no name table")
	}
	start := int(t.StringOffset) + int(rec.Offset)
	if rec.Length == 0 {
		return nil, nil
	}
	b, err := t.data.view(start, int(rec.Length))
	if err != nil {
		return nil, errFontFormat("name record string out of bounds")
	}
	return b, nil
}

func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if len(b) < nameHeaderSize {
		ec.addError(tag, "Header", "name table header truncated", SeverityCritical, offset)
		return nil, errFontFormat("name section corrupt")
	}
	t := newNameTable(tag, b, offset, size)
	t.Format, _ = b.u16(0)
	n, _ := b.u16(2)
	t.StringOffset, _ = b.u16(4)
	if int(t.StringOffset) > len(b) {
		ec.addError(tag, "Header",
			fmt.Sprintf("string storage offset %d exceeds table size %d", t.StringOffset, len(b)),
			SeverityCritical, offset)
		return nil, errFontFormat("name section corrupt")
	}
	recsSize := nameRecordSize * int(n)
	if nameHeaderSize+recsSize > len(b) {
		ec.addError(tag, "Records",
			fmt.Sprintf("%d name records need %d bytes, have %d", n, nameHeaderSize+recsSize, len(b)),
			SeverityCritical, offset)
		return nil, errFontFormat("name section corrupt")
	}
	tracer().Debugf("name table has %d strings, storage starting at %d", n, t.StringOffset)
	t.Records = make([]NameRecord, n)
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(nameHeaderSize+nameRecordSize*i, nameRecordSize)
		t.Records[i] = NameRecord{
			PlatformID: u16(rec[0:2]),
			EncodingID: u16(rec[2:4]),
			LanguageID: u16(rec[4:6]),
			NameID:     u16(rec[6:8]),
			Length:     u16(rec[8:10]),
			Offset:     u16(rec[10:12]),
		}
	}
	return t, nil
}
