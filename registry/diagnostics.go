package registry

import (
	"fmt"
	"log/slog"
	"strings"
)

// Failure is one source that could not load.
type Failure struct {
	Source string
	Err    error
}

// Reason is the terse cause: the last line of the error text, which for a
// wrapped chain is usually the innermost complaint a user can act on.
func (f Failure) Reason() string {
	text := strings.TrimRight(f.Err.Error(), "\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return text
}

// Short is the one line form surfaced in load summaries.
func (f Failure) Short() string {
	return fmt.Sprintf("failed to load source %s because %s", f.Source, f.Reason())
}

// Full is the complete error chain for debugging.
func (f Failure) Full() string {
	var b strings.Builder
	fmt.Fprintf(&b, "source %s: %v", f.Source, f.Err)
	return b.String()
}

// Diagnostics accumulates the outcome of one discovery pass.
type Diagnostics struct {
	Loaded   []string
	Skipped  []string
	Failures []Failure
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) loaded(source string) {
	d.Loaded = append(d.Loaded, source)
}

func (d *Diagnostics) skip(source string) {
	d.Skipped = append(d.Skipped, source)
}

func (d *Diagnostics) record(source string, err error) {
	d.Failures = append(d.Failures, Failure{Source: source, Err: err})
}

// OK reports whether every non-skipped source loaded.
func (d *Diagnostics) OK() bool {
	return len(d.Failures) == 0
}

// Shorts returns the one line failure summaries in failure order.
func (d *Diagnostics) Shorts() []string {
	out := make([]string, len(d.Failures))
	for i, f := range d.Failures {
		out[i] = f.Short()
	}
	return out
}

// Report logs the discovery outcome: loaded count at info, each failure's
// short form at warn and its full chain at debug.
func (d *Diagnostics) Report(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	log.Info("preprocessor sources loaded",
		"loaded", len(d.Loaded),
		"skipped", len(d.Skipped),
		"failed", len(d.Failures))
	for _, f := range d.Failures {
		log.Warn(f.Short())
		log.Debug(f.Full())
	}
}
