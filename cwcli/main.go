package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/cellwidth"
	"github.com/npillmayer/cellwidth/cells"
	"github.com/npillmayer/cellwidth/internal/fontload"
	"github.com/npillmayer/cellwidth/ot"
	"github.com/npillmayer/cellwidth/otquery"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'cellwidth.cli'
func tracer() tracing.Trace {
	return tracing.Select("cellwidth.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":       "go",
		"trace.cellwidth":       "Info",
		"trace.cellwidth.cli":   "Info",
		"trace.cellwidth.ot":    "Info",
		"trace.cellwidth.cells": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to load")
	emit := flag.String("emit", "", "Emit width ranges to a file and exit (- for stdout)")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the cell width CLI")
	//
	// load font to use
	intp := &Intp{}
	if err := intp.loadFont(*fontname); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// non-interactive emit mode
	if *emit != "" {
		if err := intp.emitRanges(*emit); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(6)
		}
		return
	}
	//
	// set up REPL
	repl, err := readline.New("cw > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp.repl = repl
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font   *ot.Font
	family string
	ranges []cells.Range
	repl   *readline.Instance
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	return fmt.Sprintf("( font=%s, %d ranges )", intp.family, len(intp.ranges))
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code int
	arg  string
}

type Command struct {
	count int
	op    [8]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have an argument
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	INFO
	NAMES
	RANGES
	WIDTH
	GLYPH
	ERRORS
	EMIT
)

var opMap = map[string]int{
	"quit":   QUIT,
	"help":   HELP,
	"info":   INFO,
	"names":  NAMES,
	"ranges": RANGES,
	"width":  WIDTH,
	"glyph":  GLYPH,
	"errors": ERRORS,
	"emit":   EMIT,
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
	}
}

func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Split(line, " ")
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":") // e.g.  "width:3042" or "glyph:A" or "info"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		command.op[i].arg = getOptArg(c, 1)
		if command.op[i].code == QUIT {
			return &command, nil
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:   quitOp,
	HELP:   helpOp,
	INFO:   infoOp,
	NAMES:  namesOp,
	RANGES: rangesOp,
	WIDTH:  widthOp,
	GLYPH:  glyphOp,
	ERRORS: errorsOp,
	EMIT:   emitOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op)
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

func helpOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("commands:")
	pterm.Println("  info          show font family, type and metrics")
	pterm.Println("  names         list naming table entries")
	pterm.Println("  ranges        list classified width ranges")
	pterm.Println("  width:<hex>   classify a single code point, e.g. width:U+3042")
	pterm.Println("  glyph:<char>  glyph index and advance for a character")
	pterm.Println("  errors        list decoding errors and warnings")
	pterm.Println("  emit:<file>   write width ranges as a script ('-' for stdout)")
	pterm.Println("  quit          leave the CLI")
	return nil, false
}

func infoOp(intp *Intp, op *Op) (error, bool) {
	pterm.Printf("family:  %s\n", intp.family)
	pterm.Printf("type:    %s\n", otquery.FontType(intp.font))
	m := otquery.FontMetrics(intp.font)
	pterm.Printf("metrics: ascent=%d descent=%d linegap=%d max-advance=%d units/em=%d\n",
		m.Ascent, m.Descent, m.LineGap, m.MaxAdvance, m.UnitsPerEm)
	pterm.Printf("glyphs:  %d, mapped code points: %d\n",
		intp.font.HMtx.GlyphCount(), len(intp.font.CMap.Mappings()))
	return nil, false
}

func namesOp(intp *Intp, op *Op) (error, bool) {
	for id, s := range otquery.NamesRange(intp.font) {
		pterm.Printf("  name %3d: %s\n", id, s)
	}
	return nil, false
}

func rangesOp(intp *Intp, op *Op) (error, bool) {
	for _, rg := range intp.ranges {
		pterm.Printf("  %#06x .. %#06x  class %d\n", rg.Low, rg.High, rg.Class)
	}
	pterm.Printf("%d ranges\n", len(intp.ranges))
	return nil, false
}

func widthOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		return fmt.Errorf("width needs a hex code point argument"), false
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(arg, "U+"), "u+")
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fmt.Errorf("not a hex code point: %q", arg), false
	}
	r := rune(n)
	for _, rg := range intp.ranges {
		if r >= rg.Low && r <= rg.High {
			pterm.Printf("%#06x occupies %d cell(s)\n", r, rg.Class)
			return nil, false
		}
	}
	pterm.Printf("%#06x is not classified\n", r)
	return nil, false
}

func glyphOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		return fmt.Errorf("glyph needs a character argument"), false
	}
	r := []rune(arg)[0]
	gid := otquery.GlyphIndex(intp.font, r)
	if gid == 0 {
		pterm.Printf("%q is not mapped\n", r)
		return nil, false
	}
	pterm.Printf("%q -> glyph %d, advance %d\n", r, gid, otquery.AdvanceWidth(intp.font, gid))
	if back := otquery.CodePointForGlyph(intp.font, gid); back != r {
		pterm.Printf("glyph %d is shared, smallest code point is %#06x\n", gid, back)
	}
	return nil, false
}

func errorsOp(intp *Intp, op *Op) (error, bool) {
	for _, e := range intp.font.Errors() {
		pterm.Printf("  %s\n", e.Error())
	}
	for _, w := range intp.font.Warnings() {
		pterm.Printf("  warning: %s\n", w.Issue)
	}
	pterm.Printf("%d errors, %d warnings\n", len(intp.font.Errors()), len(intp.font.Warnings()))
	return nil, false
}

func emitOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		arg = "-"
	}
	return intp.emitRanges(arg), false
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) error {
	if fontname == "" {
		return fmt.Errorf("no font file given, use -font")
	}
	data, err := fontload.LoadFontImage(fontname)
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return err
	}
	otf, err := cellwidth.FromBinary(data)
	if err != nil {
		tracer().Errorf("cannot decode font %s: %s", fontname, err)
		return err
	}
	if otf.HasCriticalErrors() {
		return fmt.Errorf("font %s has critical decoding errors", fontname)
	}
	for _, w := range otf.Warnings() {
		tracer().Infof("decoder warning: %s", w.Issue)
	}
	family, err := cellwidth.FamilyName(otf)
	if err != nil {
		tracer().Errorf("font has no family name: %s", err)
		return err
	}
	ranges, err := cellwidth.Classify(otf)
	if err != nil {
		tracer().Errorf("cannot classify font %s: %s", fontname, err)
		return err
	}
	intp.font, intp.family, intp.ranges = otf, family, ranges
	tracer().Infof("loaded font %s with %d width ranges", family, len(ranges))
	pterm.Printf("font tables: %v\n", otf.TableTags())
	return nil
}

// ----------------------------------------------------------------------

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
