package ot

import (
	"strings"
	"testing"

	"github.com/npillmayer/cellwidth/internal/fontload"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	otf := parseFixture(t, testFixture())
	t.Logf("otf.header.tag = %x", otf.Header.FontType)
	if otf.Header.FontType != 0x00010000 {
		t.Fatalf("expected font type 0x00010000, is %x", otf.Header.FontType)
	}
	if otf.Header.TableCount != 5 {
		t.Errorf("expected 5 table records, have %d", otf.Header.TableCount)
	}
	for _, tag := range RequiredTables {
		if otf.Table(T(tag)) == nil {
			t.Errorf("expected font to contain table %s, hasn't", tag)
		}
	}
}

func TestParseMissingTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	fx := &fontload.Fixture{}
	fx.AddTable("maxp", fontload.MaxP(5))
	fx.AddTable("hhea", fontload.HHea(750, -250, 50, 1000, 3))
	fx.AddTable("hmtx", testHMtx())
	fx.AddTable("cmap", testCMap())
	// no 'name' table
	_, err := Parse(fx.Build())
	if err == nil {
		t.Fatal("expected parsing to fail on missing name table, didn't")
	}
	t.Logf("parse error = %v", err)
	if !strings.Contains(err.Error(), "missing required table name") {
		t.Errorf("expected error to name the missing table, got %q", err.Error())
	}
}

func TestParseDuplicateTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	fx := testFixture()
	fx.AddTable("maxp", fontload.MaxP(99)) // duplicate record, must be ignored
	otf := parseFixture(t, fx)
	if otf.MaxP.NumGlyphs != 5 {
		t.Errorf("expected first maxp record to win with 5 glyphs, have %d", otf.MaxP.NumGlyphs)
	}
	if len(otf.Warnings()) == 0 {
		t.Error("expected a warning for the duplicate table record, have none")
	}
	t.Logf("warning = %s", otf.Warnings()[0].String())
}

func TestParseTableBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	img := testFixture().Build()
	// corrupt the length field of the first table record
	img[24], img[25], img[26], img[27] = 0xFF, 0xFF, 0xFF, 0xFF
	_, err := Parse(img)
	if err == nil {
		t.Fatal("expected parsing to fail on out-of-bounds table record, didn't")
	}
	t.Logf("parse error = %v", err)
	if !strings.Contains(err.Error(), "bounds") {
		t.Errorf("expected a bounds error, got %q", err.Error())
	}
}

func TestParseUnknownFontType(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	img := testFixture().Build()
	img[0], img[1], img[2], img[3] = 'w', 'O', 'F', 'F'
	if _, err := Parse(img); err == nil {
		t.Fatal("expected parsing to reject unknown font type, didn't")
	}
}

func TestMetricsFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	otf := parseFixture(t, testFixture())
	if otf.HMtx.GlyphCount() != 5 {
		t.Fatalf("expected 5 glyph metrics, have %d", otf.HMtx.GlyphCount())
	}
	// glyphs beyond numberOfHMetrics reuse the last explicit advance
	if w := otf.HMtx.AdvanceWidth(2); w != 1000 {
		t.Errorf("expected advance 1000 for glyph 2, got %d", w)
	}
	if w := otf.HMtx.AdvanceWidth(4); w != 1000 {
		t.Errorf("expected advance 1000 for trailing glyph 4, got %d", w)
	}
	if w := otf.HMtx.AdvanceWidth(17); w != 1000 {
		t.Errorf("expected out-of-range glyph to clamp to advance 1000, got %d", w)
	}
	aw, lsb, ok := otf.HMtx.HMetrics(3)
	if !ok || aw != 1000 || lsb != 40 {
		t.Errorf("expected metrics (1000, 40) for glyph 3, got (%d, %d, %v)", aw, lsb, ok)
	}
	widths := otf.HMtx.AdvanceWidths()
	if len(widths) != 5 {
		t.Fatalf("expected 5 advance widths, have %d", len(widths))
	}
	t.Logf("advance widths = %v", widths)
	if widths[0] != 500 || widths[4] != 1000 {
		t.Errorf("unexpected advance widths %v", widths)
	}
}

func TestMetricsCountExceedsGlyphCount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	fx := &fontload.Fixture{}
	fx.AddTable("maxp", fontload.MaxP(2))
	fx.AddTable("hhea", fontload.HHea(750, -250, 50, 1000, 3)) // 3 > 2 glyphs
	fx.AddTable("hmtx", testHMtx())
	fx.AddTable("cmap", testCMap())
	fx.AddTable("name", testName())
	_, err := Parse(fx.Build())
	if err == nil {
		t.Fatal("expected parsing to fail on hhea/maxp mismatch, didn't")
	}
	t.Logf("parse error = %v", err)
}

func TestParseHHeaFields(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.ot")
	defer teardown()
	//
	otf := parseFixture(t, testFixture())
	hhea := otf.HHea
	if hhea.Ascender != 750 || hhea.Descender != -250 || hhea.LineGap != 50 {
		t.Errorf("unexpected vertical metrics (%d, %d, %d)", hhea.Ascender, hhea.Descender, hhea.LineGap)
	}
	if hhea.AdvanceWidthMax != 1000 {
		t.Errorf("expected max advance 1000, got %d", hhea.AdvanceWidthMax)
	}
	if hhea.NumberOfHMetrics != 3 {
		t.Errorf("expected 3 long metrics, got %d", hhea.NumberOfHMetrics)
	}
}

// ---------------------------------------------------------------------------

// testFixture assembles a minimal usable font: 5 glyphs, 3 long metrics with
// trailing bearings, a format-4 cmap mapping 'A'..'C' to glyphs 1..3, and a
// Windows-platform family name.
func testFixture() *fontload.Fixture {
	fx := &fontload.Fixture{}
	fx.AddTable("maxp", fontload.MaxP(5))
	fx.AddTable("hhea", fontload.HHea(750, -250, 50, 1000, 3))
	fx.AddTable("hmtx", testHMtx())
	fx.AddTable("cmap", testCMap())
	fx.AddTable("name", testName())
	return fx
}

func testHMtx() []byte {
	return fontload.HMtx([]fontload.HMetric{
		{AdvanceWidth: 500, LeftSideBearing: 10},
		{AdvanceWidth: 500, LeftSideBearing: 20},
		{AdvanceWidth: 1000, LeftSideBearing: 30},
	}, []int16{40, 50})
}

func testCMap() []byte {
	return fontload.CMap(fontload.CMapSubtable{
		PlatformID: 3,
		EncodingID: 1,
		Data:       fontload.Format4(fontload.Segment4{Start: 0x41, End: 0x43, Delta: -0x40}),
	})
}

func testName() []byte {
	return fontload.Name(
		fontload.NameEntry{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 1, Value: "Test Family"},
		fontload.NameEntry{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 2, Value: "Regular"},
	)
}

func parseFixture(t *testing.T, fx *fontload.Fixture) *Font {
	otf, err := Parse(fx.Build())
	if err != nil {
		t.Fatal(err)
	}
	return otf
}
