package ot

import (
	"testing"

	"github.com/npillmayer/cellwidth/internal/fontload"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestCMapFormat4Delta(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	mapping, err := decodeCMapFormat4(fontload.Format4(
		fontload.Segment4{Start: 0x41, End: 0x43, Delta: -0x40},
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(mapping) != 3 {
		t.Fatalf("expected 3 mapped code points, have %d", len(mapping))
	}
	for i, r := range []rune{'A', 'B', 'C'} {
		if gid := mapping[r]; gid != GlyphIndex(i+1) {
			t.Errorf("expected %q to map to glyph %d, got %d", r, i+1, gid)
		}
	}
}

func TestCMapFormat4Identity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	// delta 0 and no glyph-ID array yields the identity mapping
	mapping, err := decodeCMapFormat4(fontload.Format4(
		fontload.Segment4{Start: 0x41, End: 0x43},
	))
	if err != nil {
		t.Fatal(err)
	}
	for r := rune(0x41); r <= 0x43; r++ {
		if gid := mapping[r]; gid != GlyphIndex(r) {
			t.Errorf("expected identity mapping for %#x, got glyph %d", r, gid)
		}
	}
}

func TestCMapFormat4RangeOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	mapping, err := decodeCMapFormat4(fontload.Format4(
		fontload.Segment4{Start: 0x61, End: 0x63, Delta: 2, GlyphIDs: []uint16{7, 0, 9}},
	))
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("mapping = %v", mapping)
	if gid := mapping['a']; gid != 9 { // 7 + delta 2
		t.Errorf("expected 'a' to map to glyph 9, got %d", gid)
	}
	// glyph-array entry 0 marks an unmapped position; no delta is applied
	if gid := mapping['b']; gid != 0 {
		t.Errorf("expected 'b' to be unmapped, got glyph %d", gid)
	}
	if gid := mapping['c']; gid != 11 { // 9 + delta 2
		t.Errorf("expected 'c' to map to glyph 11, got %d", gid)
	}
}

func TestCMapFormat6(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	mapping, err := decodeCMapFormat6(fontload.Format6(0x3000, []uint16{10, 11}))
	if err != nil {
		t.Fatal(err)
	}
	if mapping[0x3000] != 10 || mapping[0x3001] != 11 {
		t.Errorf("unexpected trimmed-table mapping %v", mapping)
	}
	if _, ok := mapping[0x3002]; ok {
		t.Error("expected code point past the trimmed range to be unmapped")
	}
}

func TestCMapFormat12(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	mapping, err := decodeCMapFormat12(fontload.Format12(
		fontload.Group12{StartCharCode: 0x20000, EndCharCode: 0x20002, StartGlyphID: 500},
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(mapping) != 3 {
		t.Fatalf("expected 3 mapped code points, have %d", len(mapping))
	}
	if mapping[0x20000] != 500 || mapping[0x20002] != 502 {
		t.Errorf("unexpected segmented-coverage mapping %v", mapping)
	}
}

func TestCMapUnsupportedFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	otf := parseFixture(t, fixtureWithCMap(fontload.CMap(
		fontload.CMapSubtable{PlatformID: 1, EncodingID: 0, Data: fontload.Unsupported(2)},
		fontload.CMapSubtable{PlatformID: 3, EncodingID: 1, Data: fontload.Format6(0x41, []uint16{1, 2, 3})},
	)))
	if len(otf.Warnings()) == 0 {
		t.Fatal("expected a warning for the unsupported subtable format, have none")
	}
	t.Logf("warning = %s", otf.Warnings()[0].String())
	if gid := otf.CMap.Lookup('B'); gid != 2 {
		t.Errorf("expected supported subtable to map 'B' to glyph 2, got %d", gid)
	}
}

func TestCMapSubtableMerge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	// both subtables map 'A'; the later record wins in the unified mapping
	otf := parseFixture(t, fixtureWithCMap(fontload.CMap(
		fontload.CMapSubtable{PlatformID: 0, EncodingID: 3, Data: fontload.Format6(0x41, []uint16{4})},
		fontload.CMapSubtable{
			PlatformID: 3,
			EncodingID: 1,
			Data:       fontload.Format4(fontload.Segment4{Start: 0x41, End: 0x41, Delta: -0x40}),
		},
	)))
	if len(otf.CMap.EncodingRecords) != 2 {
		t.Fatalf("expected 2 encoding records, have %d", len(otf.CMap.EncodingRecords))
	}
	if gid := otf.CMap.Lookup('A'); gid != 1 {
		t.Errorf("expected later subtable to win with glyph 1, got %d", gid)
	}
}

func TestCMapReverseLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	otf := parseFixture(t, testFixture())
	if r := otf.CMap.ReverseLookup(2); r != 'B' {
		t.Errorf("expected glyph 2 to reverse-map to 'B', got %q", r)
	}
	if r := otf.CMap.ReverseLookup(77); r != 0 {
		t.Errorf("expected unmapped glyph to reverse-map to 0, got %q", r)
	}
}

// ---------------------------------------------------------------------------

func fixtureWithCMap(cmap []byte) *fontload.Fixture {
	fx := &fontload.Fixture{}
	fx.AddTable("maxp", fontload.MaxP(5))
	fx.AddTable("hhea", fontload.HHea(750, -250, 50, 1000, 3))
	fx.AddTable("hmtx", testHMtx())
	fx.AddTable("cmap", cmap)
	fx.AddTable("name", testName())
	return fx
}
