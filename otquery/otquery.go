/*
Package otquery provides typed, read-only queries over a decoded SFNT font:
name-table strings, glyph lookups and advance-width metrics. It interprets
tables which package ot exposes mostly uninterpreted.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package otquery

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'cellwidth.query'
func tracer() tracing.Trace {
	return tracing.Select("cellwidth.query")
}
