// Package output renders reports as text or JSON, to stdout or to a file,
// optionally zstd-compressed for archival.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/contractkit/protokit-go/internal/domain"
)

// Formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures a report writer
type Options struct {
	Format   string
	File     string // empty means stdout
	Compress bool   // zstd-wrap file output
	Out      io.Writer
}

// Writer renders result shapes into their output form
type Writer struct {
	opts Options
}

// NewWriter creates a report writer
func NewWriter(opts Options) *Writer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Writer{opts: opts}
}

// ValidationEntry pairs a validation report with the file it covers
type ValidationEntry struct {
	Path   string        `json:"path"`
	Report domain.Report `json:"report"`
}

// WriteValidation renders a batch of per-file validation reports
func (w *Writer) WriteValidation(entries []ValidationEntry) error {
	if w.opts.Format == FormatJSON {
		return w.emitJSON(entries)
	}

	var b strings.Builder
	for _, e := range entries {
		status := "ok"
		if !e.Report.OK {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s: %s\n", e.Path, status)
		for _, res := range e.Report.Results {
			for _, issue := range res.Issues {
				fmt.Fprintf(&b, "  [%s] %s: %s (%s)\n", issue.Level, issue.Path, issue.Msg, res.Name)
			}
		}
	}
	return w.emitText(b.String())
}

// WriteDiff renders a diff result
func (w *Writer) WriteDiff(d *domain.DiffResult) error {
	if w.opts.Format == FormatJSON {
		return w.emitJSON(d)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d changes, %d breaking, %d significant\n",
		len(d.Changes), len(d.Breaking), len(d.Significant))
	for _, c := range d.Changes {
		fmt.Fprintf(&b, "  ~ %s: %s -> %s\n", c.Path, renderValue(c.From), renderValue(c.To))
	}
	for _, bc := range d.Breaking {
		fmt.Fprintf(&b, "  ! BREAKING %s: %s\n", bc.Path, bc.Reason)
	}
	for _, s := range d.Significant {
		fmt.Fprintf(&b, "  * significant %s\n", s.Path)
	}
	return w.emitText(b.String())
}

// WriteMigration renders a migration plan
func (w *Writer) WriteMigration(p domain.MigrationPlan) error {
	if w.opts.Format == FormatJSON {
		return w.emitJSON(p)
	}

	var b strings.Builder
	for i, step := range p.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	for _, note := range p.Notes {
		fmt.Fprintf(&b, "-- %s\n", note)
	}
	return w.emitText(b.String())
}

// WriteCatalog renders a catalog analysis report
func (w *Writer) WriteCatalog(r domain.CatalogReport) error {
	if w.opts.Format == FormatJSON {
		return w.emitJSON(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "catalog: %d instances\n", r.Instances)
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", issue.Level, issue.Path, issue.Msg)
	}
	for _, cycle := range r.Cycles {
		fmt.Fprintf(&b, "  cycle: %s\n", strings.Join(cycle, " -> "))
	}
	for _, issue := range r.PIIEgress {
		fmt.Fprintf(&b, "  [%s] pii egress: %s\n", issue.Level, issue.Msg)
	}
	return w.emitText(b.String())
}

func renderValue(v any) string {
	if v == nil {
		return "<absent>"
	}
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (w *Writer) emitJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return w.emit(append(data, '\n'))
}

func (w *Writer) emitText(s string) error {
	return w.emit([]byte(s))
}

// emit routes rendered output to the configured sink. File output goes
// through an atomic-enough create; compression only applies to files, since
// a compressed stream on a terminal is useless.
func (w *Writer) emit(data []byte) error {
	if w.opts.File == "" {
		_, err := w.opts.Out.Write(data)
		return err
	}

	f, err := os.Create(w.opts.File)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if w.opts.Compress {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("failed to init compressor: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	}

	_, err = f.Write(data)
	return err
}
