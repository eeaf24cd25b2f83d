package main

import (
	"fmt"
	"io"
	"os"
	"text/template"
)

// rangeScript renders the classification result as a small script-like
// listing, one setwidth line per range, suitable for downstream tooling.
const rangeScript = `# cell widths for "{{.Family}}"
{{- range .Ranges}}
setwidth {{printf "0x%04X" .Low}} {{printf "0x%04X" .High}} {{.Class}}
{{- end}}
`

var rangeTmpl = template.Must(template.New("ranges").Parse(rangeScript))

func (intp *Intp) emitRanges(target string) error {
	var w io.Writer = os.Stdout
	if target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	data := struct {
		Family string
		Ranges interface{}
	}{intp.family, intp.ranges}
	if err := rangeTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("cannot render width ranges: %w", err)
	}
	tracer().Infof("emitted width ranges to %s", target)
	return nil
}
