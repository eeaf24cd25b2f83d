package cells

import (
	"errors"
	"sort"
)

// ErrInsufficientWidths is returned when a font's histogram contains fewer
// than two distinct non-trivial advance widths: such a font cannot be
// partitioned into half-width and full-width groups.
var ErrInsufficientWidths = errors.New("fewer than two usable advance widths: font cannot be classified")

// Range is an inclusive code-point range tagged with a cell-width class.
// Class is 1 for the narrower of the two selected advance widths and 2 for
// the wider one.
type Range struct {
	Low   rune
	High  rune
	Class int
}

// Classify selects the two dominant advance widths of a histogram and
// compresses their code points into minimal contiguous inclusive ranges.
//
// The two widths with the largest code-point populations are kept; if more
// than two widths exist, the rest are dropped — a lossy simplification
// inherent to the binary narrower-or-wider model — and the loss is reported
// as a warning trace. Fewer than two usable widths is an error. The smaller
// selected width becomes class 1, the larger class 2.
//
// The result is deterministic: candidate widths tie-break by value, and each
// class's ranges are emitted in ascending code-point order, class 1 first.
func Classify(h Histogram) ([]Range, error) {
	if len(h) < 2 {
		return nil, ErrInsufficientWidths
	}
	widths := make([]uint16, 0, len(h))
	for w := range h {
		widths = append(widths, w)
	}
	sort.Slice(widths, func(i, j int) bool {
		if len(h[widths[i]]) != len(h[widths[j]]) {
			return len(h[widths[i]]) > len(h[widths[j]])
		}
		return widths[i] < widths[j]
	})
	if len(widths) > 2 {
		dropped := 0
		for _, w := range widths[2:] {
			dropped += len(h[w])
		}
		tracer().Infof("%d advance widths present, keeping the 2 dominant ones (%d code points dropped)",
			len(widths), dropped)
	}
	selected := []uint16{widths[0], widths[1]}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	var ranges []Range
	for class, w := range selected {
		ranges = append(ranges, compress(h[w], class+1)...)
	}
	return ranges, nil
}

// compress run-length-compresses a set of code points into ordered inclusive
// ranges: a new range starts whenever the next code point is not exactly one
// greater than the current range's end.
func compress(codepoints []rune, class int) []Range {
	if len(codepoints) == 0 {
		return nil
	}
	sorted := make([]rune, len(codepoints))
	copy(sorted, codepoints)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	ranges := make([]Range, 0, 16)
	current := Range{Low: sorted[0], High: sorted[0], Class: class}
	for _, r := range sorted[1:] {
		if r == current.High+1 {
			current.High = r
			continue
		}
		ranges = append(ranges, current)
		current = Range{Low: r, High: r, Class: class}
	}
	return append(ranges, current)
}
