package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"github.com/kadirbelkuyu/dbddl/internal/config"
	"github.com/kadirbelkuyu/dbddl/internal/database"
	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/schema"
	"github.com/kadirbelkuyu/dbddl/pkg/logger"
	"github.com/kadirbelkuyu/dbddl/pkg/progress"
)

// Output is the generation result for one dialect.
type Output struct {
	Dialect *ddl.Dialect
	Result  *ddl.Result
}

// Service runs the generate and extract workflows. Scripts and listings go to
// out; progress bars go to errOut.
type Service struct {
	logger *logger.Logger
	out    io.Writer
	errOut io.Writer

	// connect opens the catalog source; replaced in tests.
	connect func(ctx context.Context, cfg config.DatabaseConfig) (*database.Connection, error)
}

func NewService(log *logger.Logger, out io.Writer) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Service{
		logger:  log,
		out:     out,
		errOut:  os.Stderr,
		connect: database.NewConnection,
	}
}

// GenerationOptions maps the configuration onto generator options.
func GenerationOptions(cfg config.GenerationConfig) ddl.Options {
	return ddl.Options{
		QuoteIdentifiers: cfg.QuoteIdentifiers,
		IncludeDrops:     cfg.IncludeDrops,
		Catalog:          cfg.Catalog,
		Schema:           cfg.Schema,
		Tables:           cfg.Tables,
	}
}

// ResolveDialects looks up every requested dialect before any work starts.
func ResolveDialects(names []string) ([]*ddl.Dialect, error) {
	if len(names) == 0 {
		return nil, ddl.ErrDialectRequired
	}
	dialects := make([]*ddl.Dialect, 0, len(names))
	for _, name := range names {
		d, ok := ddl.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(ddl.List(), ", "))
		}
		dialects = append(dialects, d)
	}
	return dialects, nil
}

// GenerateAll generates db for every dialect concurrently. Each run owns its
// script and warnings; outputs keep the order of dialects.
func (s *Service) GenerateAll(ctx context.Context, db *schema.Database, dialects []*ddl.Dialect, opts ddl.Options) ([]Output, error) {
	outputs := make([]Output, len(dialects))

	eg, ctx := errgroup.WithContext(ctx)
	for i, d := range dialects {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result, err := ddl.NewGenerator(d, opts, s.logger).Generate(db)
			if err != nil {
				return fmt.Errorf("%s: %w", d.Name(), err)
			}
			outputs[i] = Output{Dialect: d, Result: result}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// LoadSchema reads the schema document named by cfg.Input, or extracts the
// source catalog when no input is configured.
func (s *Service) LoadSchema(ctx context.Context, cfg *config.Config) (*schema.Database, error) {
	if cfg.Input != "" {
		s.logger.Infof("Loading schema document %s", cfg.Input)
		return schema.Load(cfg.Input)
	}
	return s.Extract(ctx, cfg.Source)
}

// Generate runs the whole generate workflow for cfg and writes the scripts.
func (s *Service) Generate(ctx context.Context, cfg *config.Config) ([]Output, error) {
	dialects, err := ResolveDialects(cfg.Dialects)
	if err != nil {
		return nil, err
	}

	db, err := s.LoadSchema(ctx, cfg)
	if err != nil {
		return nil, err
	}

	outputs, err := s.GenerateAll(ctx, db, dialects, GenerationOptions(cfg.Generation))
	if err != nil {
		return nil, fmt.Errorf("failed to generate DDL: %w", err)
	}

	if err := s.WriteScripts(outputs, cfg.Output, cfg.Terminator); err != nil {
		return nil, err
	}

	for _, o := range outputs {
		s.logger.Infof("%s: %d statements, %d warnings", o.Dialect.Name(), len(o.Result.Script), len(o.Result.Warnings))
	}
	return outputs, nil
}

// Extract reads the source catalog into a schema model.
func (s *Service) Extract(ctx context.Context, source config.DatabaseConfig) (*schema.Database, error) {
	conn, err := s.connect(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer conn.Close()

	extractor := schema.NewExtractor(conn, s.logger)

	count, err := extractor.CountTables(ctx, source.Schema)
	if err != nil {
		return nil, err
	}
	bar := progress.NewBarWithWriter(s.errOut, int64(count), "Extracting tables")
	extractor.OnTable = func(t *schema.Table) {
		bar.Describe(t.Name)
		bar.Increment()
	}

	db, err := extractor.Extract(ctx, source.Schema)
	bar.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}
	return db, nil
}

// ExtractTo extracts the source catalog and writes it as a schema document.
// An empty path writes to the service output.
func (s *Service) ExtractTo(ctx context.Context, source config.DatabaseConfig, path string) (*schema.Database, error) {
	db, err := s.Extract(ctx, source)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return db, schema.Encode(s.out, db)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema document: %w", err)
	}
	defer file.Close()

	if err := schema.Encode(file, db); err != nil {
		return nil, err
	}
	s.logger.Infof("Schema document written to %s", path)
	return db, nil
}

// ScriptPath is where the script for dialect goes. With several dialects the
// dialect key is inserted before the extension: out.sql becomes
// out.hsqldb.sql.
func ScriptPath(output string, d *ddl.Dialect, multiple bool) string {
	if !multiple {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "." + d.Key() + ext
}

// WriteScripts writes every script to its file, or to the service output
// when output is empty.
func (s *Service) WriteScripts(outputs []Output, output, terminator string) error {
	multiple := len(outputs) > 1

	for _, o := range outputs {
		if output == "" {
			if multiple {
				fmt.Fprintf(s.out, "-- %s\n", o.Dialect.Name())
			}
			if _, err := io.WriteString(s.out, o.Result.Script.Render(terminator)); err != nil {
				return fmt.Errorf("failed to write script: %w", err)
			}
			continue
		}

		path := ScriptPath(output, o.Dialect, multiple)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte(o.Result.Script.Render(terminator)), 0o644); err != nil {
			return fmt.Errorf("failed to write script %s: %w", path, err)
		}
		s.logger.Infof("%s script written to %s", o.Dialect.Name(), path)
	}
	return nil
}

// RenderWarnings prints the warnings of every output as a table.
func RenderWarnings(w io.Writer, outputs []Output) {
	total := 0
	for _, o := range outputs {
		total += len(o.Result.Warnings)
	}
	if total == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Dialect", "Kind", "Object", "Message"})
	for _, o := range outputs {
		for _, warning := range o.Result.Warnings {
			object := ""
			if warning.Subject != nil {
				object = fmt.Sprintf("%s %s", warning.Subject.ObjectType(), warning.Subject.ObjectName())
			}
			t.AppendRow(table.Row{o.Dialect.Name(), warning.Kind.String(), object, warning.Message})
		}
	}
	t.Render()
}

// ListDialects prints every registered dialect.
func ListDialects(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Name", "Catalog term", "Schema term", "Max identifier"})

	for _, key := range ddl.List() {
		d := ddl.MustGet(key)
		maxLen := "unlimited"
		if n := d.MaxIdentifierLength(); n > 0 {
			maxLen = fmt.Sprintf("%d", n)
		}
		t.AppendRow(table.Row{d.Key(), d.Name(), termOrNone(d.CatalogTerm()), termOrNone(d.SchemaTerm()), maxLen})
	}
	t.Render()
}

func termOrNone(term string, ok bool) string {
	if !ok {
		return "(none)"
	}
	return term
}

// ListTypes prints the type registry of one dialect.
func ListTypes(w io.Writer, name string) error {
	d, ok := ddl.Get(name)
	if !ok {
		return fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(ddl.List(), ", "))
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(d.Name())
	t.AppendHeader(table.Row{"Code", "Physical name", "Max length", "Literal", "Precision", "Scale"})

	for _, desc := range d.Registry().Descriptors() {
		maxLen := "-"
		switch {
		case desc.Unbounded(d.UnboundedLength()):
			maxLen = "unbounded"
		case desc.MaxLength > 0:
			maxLen = fmt.Sprintf("%d", desc.MaxLength)
		}
		literal := "-"
		if desc.LiteralPrefix != "" || desc.LiteralSuffix != "" {
			literal = desc.FormatLiteral("x")
		}
		t.AppendRow(table.Row{desc.Code.String(), desc.PhysicalName, maxLen, literal, yesNo(desc.SupportsPrecision), yesNo(desc.SupportsScale)})
	}
	t.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
