// Command latticemill converts particle accelerator lattice files between
// the MADX, elegant, pyat, and canonical JSON formats.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/latticemill/latticemill/core/convert"
	"github.com/latticemill/latticemill/core/format"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
	"github.com/latticemill/latticemill/internal/catalog"
	"github.com/latticemill/latticemill/internal/logging"

	// Import embedded handlers to register all format handlers.
	_ "github.com/latticemill/latticemill/internal/embedded"
)

const version = "0.2.0"

// CLI defines the command-line interface for latticemill.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log output format (text, json)" default:"text"`
	NameMap   string `name:"name-map" help:"Custom name map JSON file" type:"path"`

	Convert  ConvertCmd   `cmd:"" help:"Convert a lattice file between formats"`
	Detect   DetectCmd    `cmd:"" help:"Detect the format of a lattice file"`
	Validate ValidateCmd  `cmd:"" help:"Check a lattice file against the canonical model invariants"`
	Info     InfoCmd      `cmd:"" help:"Summarize the contents of a lattice file"`
	Formats  FormatsCmd   `cmd:"" help:"List supported formats"`
	Catalog  CatalogGroup `cmd:"" help:"Catalog operations (add, list, get, remove)"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// CatalogGroup contains catalog store operations.
type CatalogGroup struct {
	DB     string           `name:"db" help:"Catalog database path" default:"latticemill.db" type:"path"`
	Add    CatalogAddCmd    `cmd:"" help:"Store a lattice file in the catalog"`
	List   CatalogListCmd   `cmd:"" help:"List catalog entries"`
	Get    CatalogGetCmd    `cmd:"" help:"Print the stored source of a catalog entry"`
	Remove CatalogRemoveCmd `cmd:"" help:"Remove a catalog entry"`
}

// newConverter builds the converter, honoring the --name-map flag.
func newConverter() (*convert.Converter, error) {
	if CLI.NameMap == "" {
		return convert.Default()
	}
	data, err := os.ReadFile(CLI.NameMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read name map: %w", err)
	}
	table, err := namemap.Parse(data)
	if err != nil {
		return nil, err
	}
	return convert.New(table), nil
}

// readInput reads a lattice file, or stdin for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeOutput writes converted text to a file, or stdout when path is empty.
func writeOutput(path, text string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// resolveFormat returns the explicit input format, or runs detection.
func resolveFormat(conv *convert.Converter, explicit, text string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	name, ok := conv.Detect(text)
	if !ok {
		return "", fmt.Errorf("unable to detect input format; use --from")
	}
	logging.Debug("detected input format", "format", name)
	return name, nil
}

// ConvertCmd converts a lattice file between formats.
type ConvertCmd struct {
	Input    string `arg:"" help:"Input file path ('-' for stdin)"`
	From     string `name:"from" short:"f" help:"Input format; auto-detected when omitted"`
	To       string `name:"to" short:"t" required:"" help:"Output format"`
	Output   string `name:"output" short:"o" help:"Output file path (stdout when omitted)" type:"path"`
	Validate bool   `help:"Validate the canonical model after parsing"`
}

func (c *ConvertCmd) Run() error {
	conv, err := newConverter()
	if err != nil {
		return err
	}
	text, err := readInput(c.Input)
	if err != nil {
		return err
	}
	from, err := resolveFormat(conv, c.From, text)
	if err != nil {
		return err
	}

	start := time.Now()
	lat, report, err := conv.LoadString(text, from, c.Validate)
	if err != nil {
		logging.FormatError(from, "parse", err)
		return err
	}
	out, emitReport, err := conv.SaveString(lat, c.To)
	if err != nil {
		logging.FormatError(c.To, "emit", err)
		return err
	}
	report.Merge(emitReport)
	logging.Diagnostics(report)
	logging.Conversion(from, c.To, lat.Elements.Len(), len(report.Diagnostics), time.Since(start))

	return writeOutput(c.Output, out)
}

// DetectCmd detects the format of a lattice file.
type DetectCmd struct {
	Input string `arg:"" help:"Input file path ('-' for stdin)"`
}

func (c *DetectCmd) Run() error {
	conv, err := newConverter()
	if err != nil {
		return err
	}
	text, err := readInput(c.Input)
	if err != nil {
		return err
	}
	name, ok := conv.Detect(text)
	if !ok {
		return fmt.Errorf("format not recognized")
	}
	fmt.Println(name)
	return nil
}

// ValidateCmd parses a lattice file and checks the canonical invariants.
type ValidateCmd struct {
	Input string `arg:"" help:"Input file path ('-' for stdin)"`
	From  string `name:"from" short:"f" help:"Input format; auto-detected when omitted"`
}

func (c *ValidateCmd) Run() error {
	conv, err := newConverter()
	if err != nil {
		return err
	}
	text, err := readInput(c.Input)
	if err != nil {
		return err
	}
	from, err := resolveFormat(conv, c.From, text)
	if err != nil {
		return err
	}
	lat, report, err := conv.LoadString(text, from, false)
	if err != nil {
		return err
	}
	logging.Diagnostics(report)

	errs := lattice.Validate(lat)
	for _, e := range errs {
		logging.Error("invariant violation", "error", e.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d invariant violation(s)", len(errs))
	}
	fmt.Println("ok")
	return nil
}

// InfoCmd summarizes the contents of a lattice file.
type InfoCmd struct {
	Input string `arg:"" help:"Input file path ('-' for stdin)"`
	From  string `name:"from" short:"f" help:"Input format; auto-detected when omitted"`
}

func (c *InfoCmd) Run() error {
	conv, err := newConverter()
	if err != nil {
		return err
	}
	text, err := readInput(c.Input)
	if err != nil {
		return err
	}
	from, err := resolveFormat(conv, c.From, text)
	if err != nil {
		return err
	}
	lat, report, err := conv.LoadString(text, from, false)
	if err != nil {
		return err
	}

	fmt.Printf("format:      %s\n", from)
	fmt.Printf("title:       %s\n", lat.Title)
	fmt.Printf("root:        %s\n", lat.Root)
	fmt.Printf("elements:    %d\n", lat.Elements.Len())
	fmt.Printf("lattices:    %d\n", lat.Lattices.Len())
	fmt.Printf("commands:    %d\n", len(lat.Commands))
	fmt.Printf("diagnostics: %d\n", len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		fmt.Printf("  [%s] %s\n", d.Kind, d.Message)
	}
	return nil
}

// FormatsCmd lists the registered format handlers.
type FormatsCmd struct{}

func (c *FormatsCmd) Run() error {
	for _, h := range format.List() {
		var caps []string
		if h.CanParse() {
			caps = append(caps, "parse")
		}
		if h.CanEmit() {
			caps = append(caps, "emit")
		}
		fmt.Printf("%-10s %s\n", h.Name(), strings.Join(caps, ", "))
	}
	return nil
}

// CatalogAddCmd stores a lattice file in the catalog.
type CatalogAddCmd struct {
	Input string `arg:"" help:"Input file path ('-' for stdin)"`
	Name  string `name:"name" help:"Entry name (defaults to the input path)"`
	From  string `name:"from" short:"f" help:"Input format; auto-detected when omitted"`
}

func (c *CatalogAddCmd) Run(group *CatalogGroup) error {
	conv, err := newConverter()
	if err != nil {
		return err
	}
	text, err := readInput(c.Input)
	if err != nil {
		return err
	}
	from, err := resolveFormat(conv, c.From, text)
	if err != nil {
		return err
	}
	lat, report, err := conv.LoadString(text, from, false)
	if err != nil {
		return err
	}
	logging.Diagnostics(report)

	name := c.Name
	if name == "" {
		name = c.Input
	}

	store, err := catalog.Open(group.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Put(context.Background(), name, from, lat.Title, lat.Root, text)
	if err != nil {
		return err
	}
	logging.CatalogEvent("add", entry.ID, "name", entry.Name, "hash", entry.Hash)
	fmt.Println(entry.ID)
	return nil
}

// CatalogListCmd lists catalog entries.
type CatalogListCmd struct{}

func (c *CatalogListCmd) Run(group *CatalogGroup) error {
	store, err := catalog.Open(group.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background())
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s  %-20s  %s\n", e.ID, e.Format, e.Name, e.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// CatalogGetCmd prints the stored source of a catalog entry.
type CatalogGetCmd struct {
	ID     string `arg:"" help:"Entry ID"`
	Output string `name:"output" short:"o" help:"Output file path (stdout when omitted)" type:"path"`
}

func (c *CatalogGetCmd) Run(group *CatalogGroup) error {
	store, err := catalog.Open(group.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(context.Background(), c.ID)
	if err != nil {
		return err
	}
	return writeOutput(c.Output, entry.Source)
}

// CatalogRemoveCmd removes a catalog entry.
type CatalogRemoveCmd struct {
	ID string `arg:"" help:"Entry ID"`
}

func (c *CatalogRemoveCmd) Run(group *CatalogGroup) error {
	store, err := catalog.Open(group.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	logging.CatalogEvent("remove", c.ID)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("latticemill %s (sqlite driver: %s)\n", version, catalog.DriverType())
	return nil
}

// parseLogLevel maps the --log-level flag onto a logging level.
func parseLogLevel(s string) logging.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("latticemill"),
		kong.Description("Particle accelerator lattice file converter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logFormat := logging.FormatText
	if strings.EqualFold(CLI.LogFormat, "json") {
		logFormat = logging.FormatJSON
	}
	logging.InitLogger(parseLogLevel(CLI.LogLevel), logFormat)

	err := ctx.Run(&CLI.Catalog)
	ctx.FatalIfErrorf(err)
}
