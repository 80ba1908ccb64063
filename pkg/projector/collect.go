package projector

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Collector walks a directory tree and formats every file that survives filtering.
type Collector struct {
	opts   Options
	logger *zap.Logger

	readFile func(name string) ([]byte, error)
	isBinary func(name string) (bool, error)
}

// New creates a Collector for the given options.
func New(opts Options) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop() // Use no-op logger if none is provided
	}
	return &Collector{
		opts:     opts,
		logger:   logger,
		readFile: os.ReadFile,
		isBinary: isBinaryFile,
	}
}

// Collect is a shorthand for New(opts).Collect(root).
func Collect(root string, opts Options) (*Result, error) {
	return New(opts).Collect(root)
}

// Collect traverses root top-down and builds the result.
//
// Only a missing, unreadable or non-directory root is fatal. Failures on
// individual files or subdirectories are logged as warnings, recorded in the
// result and otherwise ignored.
func (c *Collector) Collect(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	c.logger.Debug("Starting file collection",
		zap.String("root", root),
		zap.Strings("ignore", c.opts.Ignore.Patterns()),
		zap.Int("extensions", len(c.opts.Extensions)),
		zap.Bool("dryRun", c.opts.DryRun))

	// A symlinked root is walked through its target.
	walkRoot := root
	if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		walkRoot = root + string(filepath.Separator)
	}

	res := &Result{Root: root}
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot {
				return err
			}
			display := normalizePath(path)
			c.logger.Warn("Error accessing path during traversal", zap.String("path", display), zap.Error(err))
			res.skip(display, err)
			return nil
		}
		if path == walkRoot {
			return nil
		}
		return c.visit(res, walkRoot, path, d)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	c.logger.Debug("Completed file collection",
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// visit applies the ignore, extension and file type filters to one entry.
func (c *Collector) visit(res *Result, root, path string, d fs.DirEntry) error {
	name := d.Name()

	if d.IsDir() {
		if p, ok := c.opts.Ignore.MatchingPattern(name); ok {
			c.logger.Debug("Skipping ignored directory", zap.String("directory", path), zap.String("pattern", p))
			return filepath.SkipDir
		}
		return nil
	}

	if d.Type()&fs.ModeSymlink != 0 {
		// Links to directories are never followed nor emitted.
		if target, err := os.Stat(path); err == nil && target.IsDir() {
			c.logger.Debug("Skipping symlinked directory", zap.String("path", path))
			return nil
		}
	}

	if p, ok := c.opts.Ignore.MatchingPattern(name); ok {
		c.logger.Debug("Skipping ignored file", zap.String("file", path), zap.String("pattern", p))
		return nil
	}
	if !c.opts.Extensions.Allows(name) {
		c.logger.Debug("Skipping file with unlisted extension", zap.String("file", path))
		return nil
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	c.process(res, path, filepath.ToSlash(rel), d.Type())
	return nil
}

// process reads and formats a single file, or records a placeholder in dry-run mode.
// mode is the entry's type bits as reported by the walk.
func (c *Collector) process(res *Result, path, rel string, mode fs.FileMode) {
	display := normalizePath(path)
	if c.opts.Verbose {
		c.logger.Info("Processing file", zap.String("path", display))
	}

	if c.opts.DryRun {
		res.Records = append(res.Records, Record{Path: display, Rel: rel, Placeholder: true})
		return
	}

	// Devices, pipes and sockets could block or never end.
	if mode&fs.ModeSymlink == 0 && !mode.IsRegular() {
		c.logger.Warn("Skipping irregular file", zap.String("path", display), zap.Stringer("mode", mode))
		res.skip(display, fmt.Errorf("irregular file (%s)", mode))
		return
	}

	if c.opts.SkipBinary {
		binary, err := c.isBinary(path)
		if err != nil {
			c.logger.Warn("Could not read file", zap.String("path", display), zap.Error(err))
			res.skip(display, err)
			return
		}
		if binary {
			c.logger.Warn("Skipping binary file", zap.String("path", display))
			res.skip(display, errBinary)
			return
		}
	}

	raw, err := c.readFile(path)
	if err != nil {
		c.logger.Warn("Could not read file", zap.String("path", display), zap.Error(err))
		res.skip(display, err)
		return
	}

	res.Bytes += int64(len(raw))
	res.Records = append(res.Records, Record{Path: display, Rel: rel, Content: decodeText(raw)})
}

// normalizePath collapses redundant separators and dot segments and renders
// the path with forward slashes on every platform.
func normalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
