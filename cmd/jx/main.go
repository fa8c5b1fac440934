package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/arnodel/jsonml/encoding/csv"
	"github.com/arnodel/jsonml/encoding/json"
	"github.com/arnodel/jsonml/encoding/markup"
	"github.com/arnodel/jsonml/internal/config"
	"github.com/arnodel/jsonml/internal/format"
	"github.com/arnodel/jsonml/token"
	"github.com/arnodel/jsonml/transform"
	"github.com/arnodel/jsonml/transform/jsonml"
	"github.com/arnodel/jsonml/transform/xmldata"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling in run).
	signal.Ignore(syscall.SIGPIPE)
	os.Exit(runMain())
}

func runMain() (code int) {
	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
			code = 2
		}
	}()
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// options are the command line flags.  Flags that are explicitly set
// override the configuration file.
type options struct {
	inputFormat      string
	configPath       string
	root             string
	tab              string
	newLine          string
	pretty           bool
	strict           bool
	attrPrefix       string
	keepWhitespace   bool
	declareNS        bool
	html             bool
	colorMode        string
	trace            bool
	jsonIndent       int
	jsonCompactWidth int
	csvHeader        bool
	writeConfig      bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	errColor := color.New(color.FgRed, color.Bold)
	fail := func(msg string, a ...any) int {
		errColor.Fprintf(stderr, "jx: %s\n", fmt.Sprintf(msg, a...))
		return 1
	}

	var opts options
	fs := flag.NewFlagSet("jx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	fs.StringVar(&opts.inputFormat, "in", "auto", "input format: auto, xml, json, csv")
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "path to the configuration file")
	fs.StringVar(&opts.root, "root", "", "element name of the root value (json input)")
	fs.StringVar(&opts.tab, "indent", "\t", "indentation string for pretty XML output")
	fs.StringVar(&opts.newLine, "newline", "\n", "line break for pretty XML output")
	fs.BoolVar(&opts.pretty, "pretty", false, "pretty print XML output")
	fs.BoolVar(&opts.strict, "strict", false, "report unbalanced input instead of repairing it")
	fs.StringVar(&opts.attrPrefix, "attr-prefix", "", "prefix of JSON keys which are attributes")
	fs.BoolVar(&opts.keepWhitespace, "keep-whitespace", false, "keep whitespace-only text (xml input)")
	fs.BoolVar(&opts.declareNS, "declare-ns", false, "declare namespaces in XML output")
	fs.BoolVar(&opts.html, "html", false, "relaxed parsing of HTML-like input (xml input)")
	fs.StringVar(&opts.colorMode, "color", "auto", "colorize output: auto, always, never")
	fs.BoolVar(&opts.trace, "trace", false, "log all tokens to stderr")
	fs.IntVar(&opts.jsonIndent, "json-indent", 2, "JSON indentation level, -1 for a single line")
	fs.IntVar(&opts.jsonCompactWidth, "json-compact-width", 60, "max width for inline JSON arrays")
	fs.BoolVar(&opts.csvHeader, "csv-header", false, "the first CSV record holds field names (csv input)")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "save the configuration given by flags and environment, then exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.LoadWithEnv(opts.configPath)
	if err != nil {
		return fail("%s", err)
	}
	fs.Visit(func(f *flag.Flag) { opts.apply(f.Name, cfg) })
	if err := cfg.Validate(); err != nil {
		return fail("invalid configuration: %s", err)
	}
	if opts.writeConfig {
		if err := cfg.Save(opts.configPath); err != nil {
			return fail("%s", err)
		}
		fmt.Fprintf(stderr, "jx: configuration written to %s\n", opts.configPath)
		return 0
	}

	var transforms []func(token.ReadStream[token.Common]) token.ReadStream[token.Common]
	for _, arg := range fs.Args() {
		t, err := parseTransform(arg)
		if err != nil {
			return fail("%s", err)
		}
		transforms = append(transforms, t)
	}

	// Set up stdout for handling colors
	stdoutFile, isFile := stdout.(*os.File)
	isTerminal := isFile && isatty.IsTerminal(stdoutFile.Fd())
	useColor := false
	switch cfg.Color {
	case "always":
		useColor = true
	case "", "auto":
		useColor = isTerminal
	}
	if useColor && isFile {
		stdout = colorable.NewColorable(stdoutFile)
	}

	input := bufio.NewReader(stdin)
	inputFormat := opts.inputFormat
	if inputFormat == "auto" {
		inputFormat, err = guessFormat(input)
		if err != nil {
			return fail("%s", err)
		}
	}

	// Write the output stream to stdout
	out := bufio.NewWriter(stdout)
	defer out.Flush()

	p := &pipeline{cfg: cfg, opts: &opts, transforms: transforms, out: out}

	// If we are writing to a terminal, flush after each line so user gets
	// feedback early.
	if isTerminal {
		p.flusher = out
	}

	switch inputFormat {
	case "xml":
		if useColor {
			p.jsonColorizer = &defaultJSONColorizer
		}
		err = p.xmlToJSON(input)
	case "json":
		if useColor {
			p.xmlColorizer = &defaultXMLColorizer
		}
		decoder := json.NewDecoder(input)
		decoder.AttributePrefix = cfg.AttributePrefix
		err = p.toXML(decoder)
	case "csv":
		if useColor {
			p.xmlColorizer = &defaultXMLColorizer
		}
		decoder := csv.NewDecoder(input)
		decoder.HasHeader = opts.csvHeader
		decoder.RecordsProduceObjects = opts.csvHeader
		err = p.toXML(decoder)
	default:
		return fail("invalid input format: %q", inputFormat)
	}
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return 0
		}
		return fail("%s", err)
	}
	return 0
}

// apply copies the value of an explicitly set flag to the configuration.
func (o *options) apply(name string, cfg *config.Config) {
	switch name {
	case "root":
		cfg.RootName = o.root
	case "indent":
		cfg.Tab = o.tab
	case "newline":
		cfg.NewLine = o.newLine
	case "pretty":
		cfg.Pretty = o.pretty
	case "strict":
		cfg.Strict = o.strict
	case "attr-prefix":
		cfg.AttributePrefix = o.attrPrefix
	case "keep-whitespace":
		cfg.KeepWhitespace = o.keepWhitespace
	case "declare-ns":
		cfg.DeclareNamespaces = o.declareNS
	case "color":
		cfg.Color = o.colorMode
	case "json-indent":
		cfg.JSONIndent = o.jsonIndent
	}
}

func parseTransform(arg string) (func(token.ReadStream[token.Common]) token.ReadStream[token.Common], error) {
	switch {
	case arg == "split":
		return func(in token.ReadStream[token.Common]) token.ReadStream[token.Common] {
			return transform.NewExplodeArray(in)
		}, nil
	case arg == "join":
		return func(in token.ReadStream[token.Common]) token.ReadStream[token.Common] {
			return transform.NewJoinStream(in)
		}, nil
	case strings.HasPrefix(arg, "depth="):
		depth, err := strconv.Atoi(strings.TrimPrefix(arg, "depth="))
		if err != nil {
			return nil, fmt.Errorf("invalid depth: %w", err)
		}
		return func(in token.ReadStream[token.Common]) token.ReadStream[token.Common] {
			return transform.NewMaxDepthFilter(in, depth)
		}, nil
	}
	return nil, fmt.Errorf("invalid transform: %q", arg)
}

// guessFormat looks at the first non space byte of the input.
func guessFormat(input *bufio.Reader) (string, error) {
	for n := 1; ; n++ {
		start, err := input.Peek(n)
		if len(start) < n {
			if err == io.EOF || err == nil {
				return "", errors.New("unable to guess format of empty input")
			}
			return "", fmt.Errorf("unable to read input: %w", err)
		}
		switch b := start[n-1]; b {
		case ' ', '\t', '\r', '\n':
			continue
		case '<':
			return "xml", nil
		default:
			return "json", nil
		}
	}
}

// pipeline runs a decoder, a converter and an encoder concurrently,
// connected by channels.
type pipeline struct {
	cfg        *config.Config
	opts       *options
	transforms []func(token.ReadStream[token.Common]) token.ReadStream[token.Common]
	out        io.Writer
	flusher    format.Flusher

	jsonColorizer *format.Colorizer
	xmlColorizer  *format.Colorizer
}

func (p *pipeline) commonStream(in token.ReadStream[token.Common]) token.ReadStream[token.Common] {
	for _, t := range p.transforms {
		in = t(in)
	}
	if p.opts.trace {
		in = transform.NewTrace(in, "common: ")
	}
	return in
}

func (p *pipeline) xmlToJSON(input io.Reader) error {
	g, ctx := errgroup.WithContext(context.Background())

	decoder := markup.NewDecoder(input)
	if p.opts.html {
		decoder.SetHTML()
	}
	// decodeErr is set before markupCh is closed, and the converter drains
	// markupCh, so it is safe to read after g.Wait.
	var decodeErr error
	markupCh := token.StartStream[token.Markup](decoder, func(err error) { decodeErr = err })

	commonCh := make(chan token.Common)
	g.Go(func() error {
		defer close(commonCh)
		defer drain(markupCh)
		var in token.ReadStream[token.Markup] = token.ChannelReadStream[token.Markup](markupCh)
		if !p.cfg.KeepWhitespace {
			in = transform.NewDropWhitespace(in)
		}
		if p.opts.trace {
			in = transform.NewTrace(in, "markup: ")
		}
		converter := &jsonml.ReadConverter{Strict: p.cfg.Strict}
		seq, err := converter.Transform(in)
		if err != nil {
			return err
		}
		for tok, err := range seq {
			if err != nil {
				return err
			}
			select {
			case commonCh <- tok:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		encoder := &json.Encoder{
			Printer: &format.DefaultPrinter{
				Writer:     p.out,
				IndentSize: p.cfg.JSONIndent,
				Flusher:    p.flusher,
			},
			Colorizer:         p.jsonColorizer,
			CompactWidthLimit: p.opts.jsonCompactWidth,
			AttributePrefix:   p.cfg.AttributePrefix,
		}
		return encoder.Consume(p.commonStream(token.ChannelReadStream[token.Common](commonCh)))
	})

	return firstError(decodeErr, g.Wait())
}

// toXML converts the values produced by decoder to XML.
func (p *pipeline) toXML(decoder token.StreamSource[token.Common]) error {
	var g errgroup.Group

	var decodeErr error
	commonCh := token.StartStream[token.Common](decoder, func(err error) { decodeErr = err })

	g.Go(func() error {
		defer drain(commonCh)
		transformer, err := xmldata.NewOutTransformer(p.cfg.Settings())
		if err != nil {
			return err
		}
		toks, err := transformer.Transform(p.commonStream(token.ChannelReadStream[token.Common](commonCh)))
		if err != nil {
			return err
		}
		var in token.ReadStream[token.Markup] = token.NewSliceReadStream(toks)
		if p.opts.trace {
			in = transform.NewTrace(in, "markup: ")
		}
		encoder := &markup.Encoder{
			Printer:           &format.DefaultPrinter{Writer: p.out, Flusher: p.flusher},
			Colorizer:         p.xmlColorizer,
			DeclareNamespaces: p.cfg.DeclareNamespaces,
		}
		return encoder.Consume(in)
	})

	return firstError(decodeErr, g.Wait())
}

// firstError gives precedence to decoding errors: truncated input also makes
// the later stages fail, but the decoder knows where the input is wrong.
func firstError(decodeErr, err error) error {
	if decodeErr != nil {
		return decodeErr
	}
	return err
}

// drain discards what is left in a channel so that its producer can finish.
func drain[T any](ch <-chan T) {
	for range ch {
	}
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	Yellow = []byte("\033[33m")
	White  = []byte("\033[37m")
	Green  = []byte("\033[32m")
	Cyan   = []byte("\033[36m")

	DimWhite   = []byte("\033[37;2m")
	BrightBlue = []byte("\033[34;1m")
)

var defaultJSONColorizer = format.Colorizer{
	ScalarColorCodes: [4][]byte{DimWhite, Yellow, White, Green},
	KeyColorCode:     BrightBlue,
	ResetCode:        Reset,
}

var defaultXMLColorizer = format.Colorizer{
	ScalarColorCodes:   [4][]byte{token.ShapeString: Green},
	TagColorCode:       BrightBlue,
	AttributeColorCode: Cyan,
	ResetCode:          Reset,
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `jx - XML / JSON stream converter

USAGE:
  jx [options] [transforms...] < input

DESCRIPTION:
  jx converts XML to JSON using the JsonML convention, where an element is
  an array made of its tag name, an optional object of attributes and its
  children:

    <p class="x">Hello <b>you</b></p>  ->  ["p", {"class": "x"}, "Hello ", ["b", "you"]]

  It converts JSON to XML using an XML data model, where an object is an
  element with one child element per property and an array is an element
  with one <item> child per value:

    {"a": [1, 2]}  ->  <object><a><item>1</item><item>2</item></a></object>

  Input is read from stdin.

INPUT/OUTPUT:
  -in FORMAT          Input format: auto, xml, json, csv (default: auto)
  -config PATH        Configuration file (default: $XDG_CONFIG_HOME/jx/config.yml)
  -write-config       Save the configuration given by the other options to the
                      configuration file and exit
  -strict             Report unbalanced input instead of repairing it
  -trace              Log all tokens to stderr (for debugging)
  -color MODE         Colorize output: auto, always, never (default: auto)

XML INPUT OPTIONS:
  -keep-whitespace    Keep whitespace-only text nodes
  -html               Relaxed parsing of HTML-like input
  -json-indent N      JSON indentation level, -1 for a single line (default: 2)
  -json-compact-width N
                      Max width for inline JSON arrays (default: 60)

JSON INPUT OPTIONS:
  -root NAME          Element name of the root value (default: its shape,
                      e.g. object or array)
  -attr-prefix P      Keys starting with P are attributes, e.g. -attr-prefix @
  -pretty             Pretty print the XML output
  -indent S           Indentation for pretty output (default: tab)
  -newline S          Line break for pretty output (default: \n)
  -declare-ns         Declare namespaces in the XML output

CSV INPUT OPTIONS:
  Records are converted like JSON arrays, or objects with -csv-header.  The
  JSON input options apply.

  -csv-header         The first record holds the field names

TRANSFORMS:
  Transforms apply to the JSON side of the conversion, in order.

  split               Split top level arrays into a stream of values
  join                Join the stream of values into an array
  depth=N             Truncate values at depth N

ENVIRONMENT:
  JX_PRETTY, JX_STRICT, JX_DECLARE_NS, JX_KEEP_WHITESPACE, JX_ROOT,
  JX_ATTR_PREFIX, JX_COLOR and JX_JSON_INDENT override the configuration file.

EXAMPLES:
  # XML to JsonML
  jx < page.xml

  # JSON to pretty XML with a named root
  jx -pretty -root doc < data.json

  # Each item of a JSON array becomes its own XML document
  jx -in json split < items.json

  # CSV rows as XML records
  jx -in csv -csv-header -root table join < table.csv
`)
}
