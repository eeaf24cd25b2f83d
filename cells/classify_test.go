package cells

import (
	"reflect"
	"testing"

	"github.com/npillmayer/cellwidth/internal/fontload"
	"github.com/npillmayer/cellwidth/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuildHistogram(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	otf := classifierFont(t)
	h := BuildHistogram(otf)
	t.Logf("histogram = %v", h)
	// 'A' is below U+0080 and must not contribute
	if h.Population(500) != 0 {
		t.Errorf("expected ASCII code points to be excluded, have %d at width 500", h.Population(500))
	}
	if h.Population(600) != 2 {
		t.Errorf("expected 2 code points at width 600, have %d", h.Population(600))
	}
	if h.Population(1200) != 4 {
		t.Errorf("expected 4 code points at width 1200, have %d", h.Population(1200))
	}
	// U+0300 maps to a zero-width glyph and must be skipped
	if h.Population(0) != 0 {
		t.Errorf("expected zero-width glyphs to be excluded, have %d", h.Population(0))
	}
}

func TestClassifyRanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	otf := classifierFont(t)
	ranges, err := Classify(BuildHistogram(otf))
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("ranges = %v", ranges)
	want := []Range{
		{Low: 0x0100, High: 0x0101, Class: 1},
		{Low: 0x3041, High: 0x3043, Class: 2},
		{Low: 0x3050, High: 0x3050, Class: 2},
	}
	if !reflect.DeepEqual(ranges, want) {
		t.Errorf("expected ranges %v, got %v", want, ranges)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	otf := classifierFont(t)
	first, err := Classify(BuildHistogram(otf))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		next, err := Classify(BuildHistogram(otf))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("classification not deterministic: %v vs %v", first, next)
		}
	}
}

func TestClassifyDominantWidths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	// three widths; the outlier width 900 has the smallest population and
	// must be dropped
	h := Histogram{
		600:  {0x0100, 0x0101, 0x0102},
		1200: {0x3041, 0x3042},
		900:  {0x2010},
	}
	ranges, err := Classify(h)
	if err != nil {
		t.Fatal(err)
	}
	for _, rg := range ranges {
		if rg.Low <= 0x2010 && 0x2010 <= rg.High {
			t.Errorf("expected dropped width's code point to be absent, found in %v", rg)
		}
	}
	if len(ranges) != 2 {
		t.Errorf("expected 2 ranges, have %v", ranges)
	}
}

func TestClassifyTieBreak(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	// three widths with equal populations: the two smallest width values win
	h := Histogram{
		900:  {0x0200},
		600:  {0x0100},
		1200: {0x3041},
	}
	ranges, err := Classify(h)
	if err != nil {
		t.Fatal(err)
	}
	want := []Range{
		{Low: 0x0100, High: 0x0100, Class: 1},
		{Low: 0x0200, High: 0x0200, Class: 2},
	}
	if !reflect.DeepEqual(ranges, want) {
		t.Errorf("expected ranges %v, got %v", want, ranges)
	}
}

func TestClassifyInsufficientWidths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	h := Histogram{600: {0x0100, 0x0101}}
	if _, err := Classify(h); err != ErrInsufficientWidths {
		t.Errorf("expected ErrInsufficientWidths, got %v", err)
	}
	if _, err := Classify(Histogram{}); err != ErrInsufficientWidths {
		t.Errorf("expected ErrInsufficientWidths for empty histogram, got %v", err)
	}
}

func TestCompress(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cellwidth.cells")
	defer teardown()
	//
	ranges := compress([]rune{0x3050, 0x3042, 0x3041, 0x3043}, 2)
	want := []Range{
		{Low: 0x3041, High: 0x3043, Class: 2},
		{Low: 0x3050, High: 0x3050, Class: 2},
	}
	if !reflect.DeepEqual(ranges, want) {
		t.Errorf("expected ranges %v, got %v", want, ranges)
	}
	if got := compress(nil, 1); got != nil {
		t.Errorf("expected no ranges for empty input, got %v", got)
	}
}

// ---------------------------------------------------------------------------

// classifierFont builds a font whose character map mixes ASCII, a zero-width
// combining mark, two narrow Latin letters and four wide Hiragana-range code
// points:
//
//	glyph 0: .notdef, width 500
//	glyph 1: 'A' (ASCII, excluded), width 500
//	glyph 2: width 0 (combining mark, excluded)
//	glyph 3: width 600   <- U+0100, U+0101
//	glyph 4: width 1200  <- U+3041..U+3043, U+3050
func classifierFont(t *testing.T) *ot.Font {
	fx := &fontload.Fixture{}
	fx.AddTable("maxp", fontload.MaxP(5))
	fx.AddTable("hhea", fontload.HHea(800, -200, 90, 1200, 5))
	fx.AddTable("hmtx", fontload.HMtx([]fontload.HMetric{
		{AdvanceWidth: 500, LeftSideBearing: 0},
		{AdvanceWidth: 500, LeftSideBearing: 10},
		{AdvanceWidth: 0, LeftSideBearing: 0},
		{AdvanceWidth: 600, LeftSideBearing: 10},
		{AdvanceWidth: 1200, LeftSideBearing: 20},
	}, nil))
	fx.AddTable("cmap", fontload.CMap(fontload.CMapSubtable{
		PlatformID: 3,
		EncodingID: 1,
		Data: fontload.Format4(
			fontload.Segment4{Start: 0x41, End: 0x41, GlyphIDs: []uint16{1}},
			fontload.Segment4{Start: 0x100, End: 0x101, GlyphIDs: []uint16{3, 3}},
			fontload.Segment4{Start: 0x300, End: 0x300, GlyphIDs: []uint16{2}},
			fontload.Segment4{Start: 0x3041, End: 0x3043, GlyphIDs: []uint16{4, 4, 4}},
			fontload.Segment4{Start: 0x3050, End: 0x3050, GlyphIDs: []uint16{4}},
		),
	}))
	fx.AddTable("name", fontload.Name(
		fontload.NameEntry{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 1, Value: "Classifier Test"},
	))
	otf, err := ot.Parse(fx.Build())
	if err != nil {
		t.Fatal(err)
	}
	return otf
}
