/*
Package cells classifies the code points of a font into terminal cell-width
classes. The classification rests on advance widths only: the two most
populous advance-width values are taken as the font's narrow and wide glyph
sets, and each set is compressed into inclusive code-point ranges tagged with
a cell-width class (1 = narrower, 2 = wider).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cells

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'cellwidth.cells'
func tracer() tracing.Trace {
	return tracing.Select("cellwidth.cells")
}
