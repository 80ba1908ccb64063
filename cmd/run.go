package cmd

import (
	"fmt"
	"os"
	"strings"

	"projector/pkg/logging"
	"projector/pkg/preset"
	"projector/pkg/projector"

	"github.com/c2h5oh/datasize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// settings holds the resolved values of all flags for one run.
type settings struct {
	Ignore        []string // Ignore patterns; replaces the default when set.
	IgnoreFile    string   // Optional file with more ignore patterns.
	Extensions    []string // Raw extensions as given by the user.
	Preset        string   // Optional preset name.
	ExcludeHidden bool     // Adds a ".*" ignore pattern.
	SkipBinary    bool     // Skip binary-looking files instead of decoding them.
	Verbose       bool     // Log every processed file.
	DryRun        bool     // Placeholders only, no reads.
	Output        string   // Output file; stdout when empty.
	Tree          string   // Optional tree output file.
}

func settingsFromViper(v *viper.Viper) settings {
	return settings{
		Ignore:        splitList(v.GetStringSlice("ignore")),
		IgnoreFile:    v.GetString("ignore-file"),
		Extensions:    splitList(v.GetStringSlice("extensions")),
		Preset:        v.GetString("preset"),
		ExcludeHidden: v.GetBool("exclude-hidden"),
		SkipBinary:    v.GetBool("skip-binary"),
		Verbose:       v.GetBool("verbose"),
		DryRun:        v.GetBool("dry-run"),
		Output:        v.GetString("output"),
		Tree:          v.GetString("tree"),
	}
}

// splitList splits every element on commas so values from flags, environment
// variables and config files share one syntax. Empty items are dropped.
func splitList(values []string) []string {
	var items []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// buildOptions turns settings into collector options. A fresh pattern set is
// built on every call.
func buildOptions(s settings, logger *zap.Logger) (projector.Options, error) {
	patterns, err := projector.NewPatternSet(s.Ignore...)
	if err != nil {
		return projector.Options{}, err
	}

	if s.IgnoreFile != "" {
		if err := patterns.AddFile(s.IgnoreFile); err != nil {
			return projector.Options{}, err
		}
	}

	if s.ExcludeHidden {
		if err := patterns.Add(".*"); err != nil {
			return projector.Options{}, err
		}
	}

	extensions := s.Extensions
	if s.Preset != "" {
		p, err := preset.Lookup(s.Preset)
		if err != nil {
			return projector.Options{}, err
		}
		if err := patterns.Add(p.Ignore...); err != nil {
			return projector.Options{}, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		if len(extensions) == 0 {
			extensions = p.Extensions
		}
		logger.Debug("Applied preset", zap.String("preset", p.Name), zap.Strings("extensions", extensions))
	}

	return projector.Options{
		Ignore:     patterns,
		Extensions: projector.NewExtensionSet(extensions...),
		Verbose:    s.Verbose,
		DryRun:     s.DryRun,
		SkipBinary: s.SkipBinary,
		Logger:     logger,
	}, nil
}

// run collects the files below dir and delivers the document.
func run(cmd *cobra.Command, dir string, s settings, opts projector.Options, logger *zap.Logger) error {
	logging.SetVerbose(s.Verbose)

	res, err := projector.Collect(dir, opts)
	if err != nil {
		return fmt.Errorf("failed to collect files: %w", err)
	}

	document := res.Document()
	if s.Output != "" {
		if err := writeToFile(s.Output, []byte(document), 0o644, logger); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	} else {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), document); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if s.Tree != "" {
		if err := writeToFile(s.Tree, []byte(res.Tree()), 0o644, logger); err != nil {
			return fmt.Errorf("failed to write tree structure: %w", err)
		}
	}

	if s.Verbose {
		logger.Info("Collection completed",
			zap.Int("files", len(res.Records)),
			zap.Int("skipped", len(res.Skipped)),
			zap.String("size", datasize.ByteSize(res.Bytes).HumanReadable()),
			zap.Int64("approxTokens", res.EstimatedTokens()),
		)
		if s.Output != "" {
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "\nSaved to %s\n", s.Output)
		}
	}
	return nil
}

// writeToFile writes data to a file and logs the operation.
func writeToFile(path string, data []byte, perm os.FileMode, logger *zap.Logger) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		logger.Error("Failed to write file", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Successfully wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
