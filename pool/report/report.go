// Package report renders pool allocator snapshots as text or JSON.
package report

import (
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/fixedpool/pool"
)

// Format specifies the output format for a report.
type Format string

// ErrUnknownFormat indicates an Options.Format the reporter cannot render.
var ErrUnknownFormat = errors.New("report: unknown format")

const (
	// FormatText outputs an aligned, human-readable table.
	FormatText Format = "text"

	// FormatJSON outputs a single JSON document.
	FormatJSON Format = "json"
)

// Options controls report rendering.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Language selects digit grouping for text output.
	// Default: language.English
	Language language.Tag

	// ShowHistograms includes non-zero histogram buckets.
	// Default: true
	ShowHistograms bool

	// Title is printed above the text table when non-empty.
	// Default: ""
	Title string
}

// DefaultOptions returns sensible defaults for reports.
func DefaultOptions() Options {
	return Options{
		Format:         FormatText,
		Language:       language.English,
		ShowHistograms: true,
	}
}

// Reporter writes snapshots to a writer.
type Reporter struct {
	opts Options
	w    io.Writer
	p    *message.Printer
}

// New creates a Reporter writing to w.
//
// Example:
//
//	r := report.New(os.Stdout, report.DefaultOptions())
//	r.Snapshot(a.Snapshot())
func New(w io.Writer, opts Options) *Reporter {
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	return &Reporter{
		opts: opts,
		w:    w,
		p:    message.NewPrinter(opts.Language),
	}
}

// Snapshot writes s in the configured format.
func (r *Reporter) Snapshot(s pool.Snapshot) error {
	switch r.opts.Format {
	case FormatJSON:
		return r.snapshotJSON(s)
	case FormatText:
		return r.snapshotText(s)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", r.opts.Format)
	}
}

// Layout writes the planned placement of pools, as computed by pool.Layout.
func (r *Reporter) Layout(pools []pool.PoolDescriptor) error {
	regions, total, err := pool.Layout(pools)
	if err != nil {
		return err
	}
	switch r.opts.Format {
	case FormatJSON:
		return r.layoutJSON(pools, regions, total)
	case FormatText:
		return r.layoutText(pools, regions, total)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", r.opts.Format)
	}
}
