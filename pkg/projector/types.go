// File: pkg/projector/types.go
package projector

import (
	"errors"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Delimiter separates consecutive records in the result document.
const Delimiter = "\n\n--------------\n\n"

// DefaultIgnore is the ignore pattern used when none are configured.
const DefaultIgnore = "node_modules"

// ErrNotDirectory is returned when the root path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options holds the configuration for a single collection run.
type Options struct {
	Ignore     *PatternSet  // Patterns matched against bare file and directory names.
	Extensions ExtensionSet // Lowercase, dot-prefixed allow-list. Nil disables extension filtering.
	Verbose    bool         // If true, logs a progress line for every included file.
	DryRun     bool         // If true, records placeholders without reading any file.
	SkipBinary bool         // If true, files that look binary are skipped with a warning.
	Logger     *zap.Logger  // Diagnostic logger. Nil means no diagnostics.
}

// Record is one file entry of the result document.
type Record struct {
	Path        string // Normalized, forward-slash path as rendered in the header.
	Rel         string // Forward-slash path relative to the scanned root.
	Content     string // Decoded file text. Empty for placeholders.
	Placeholder bool   // Set in dry-run mode; the file was never opened.
}

// String renders the record exactly as it appears in the document.
func (r Record) String() string {
	if r.Placeholder {
		return "<<" + r.Path + ">> (would be processed)"
	}
	return "<<" + r.Path + ">>\n" + r.Content
}

// Result is the outcome of a collection run.
type Result struct {
	Root    string   // Root directory as given by the caller.
	Records []Record // Included files in traversal order.
	Skipped []string // Paths left out because of a recoverable error.
	Bytes   int64    // Total bytes read from disk.
	Err     error    // Per-file failures, combined with multierr.
}

// Document joins all records with Delimiter. An empty result yields "".
func (r *Result) Document() string {
	parts := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		parts = append(parts, rec.String())
	}
	return strings.Join(parts, Delimiter)
}

// bytesPerToken approximates how many bytes of source text make up one LLM token.
const bytesPerToken = 4

// EstimatedTokens roughly sizes the collected content in LLM tokens, rounding up.
// Dry runs read nothing and estimate zero.
func (r *Result) EstimatedTokens() int64 {
	return (r.Bytes + bytesPerToken - 1) / bytesPerToken
}

// Errors returns the individual per-file failures.
func (r *Result) Errors() []error {
	return multierr.Errors(r.Err)
}

// Paths returns the normalized paths of all included records.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		paths = append(paths, rec.Path)
	}
	return paths
}

func (r *Result) skip(path string, err error) {
	r.Skipped = append(r.Skipped, path)
	r.Err = multierr.Append(r.Err, &PathError{Path: path, Err: err})
}

// PathError ties a recoverable failure to the file it happened on.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *PathError) Unwrap() error { return e.Err }
