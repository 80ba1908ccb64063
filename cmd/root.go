package cmd

import (
	"errors"
	"fmt"
	"strings"

	"projector/pkg/projector"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// envPrefix is the prefix of environment variables that override flags,
// e.g. PROJECTOR_DRY_RUN=true.
const envPrefix = "PROJECTOR"

// defaultConfigName is looked up in the working directory when --config is not set.
const defaultConfigName = ".projector"

// NewRootCmd builds the projector command. All diagnostics go to logger;
// the document goes to the command's output stream or to --output.
func NewRootCmd(logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "projector <directory>",
		Short: "Concatenate the files of a directory tree into one annotated document",
		Long: `Projector reads every file below a directory, skipping names that match the
ignore patterns and, optionally, files whose extension is not allowed, and
writes their contents as a single document. Each file is introduced by a
<<path>> header and files are separated by a dashed line.

Flags can also be set with PROJECTOR_* environment variables or in a
.projector.yaml file in the working directory.`,
		Example: `  projector .
  projector ./src -e go -e md -o context.txt
  projector . -i node_modules,.git,'*.log' --dry-run
  projector . --preset python -v`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Past argument parsing, failures are not usage errors.
			cmd.SilenceUsage = true

			s := settingsFromViper(v)
			opts, err := buildOptions(s, logger)
			if err != nil {
				return err
			}
			return run(cmd, args[0], s, opts, logger)
		},
	}

	flags := rootCmd.Flags()
	flags.StringSliceP("ignore", "i", []string{projector.DefaultIgnore}, "Directory/file name patterns to ignore (e.g. node_modules,.git,'*.log')")
	flags.StringSliceP("extensions", "e", nil, "File extensions to include (e.g. .py,txt,.MD); all files when empty")
	flags.StringP("output", "o", "", "File to write the document to instead of stdout")
	flags.BoolP("verbose", "v", false, "Log every processed file")
	flags.Bool("dry-run", false, "List files that would be processed without reading them")
	flags.String("ignore-file", "", "File with additional ignore patterns, one per line")
	flags.StringP("preset", "p", "", "Project preset adding ignore patterns and extensions (e.g. go, python, node)")
	flags.Bool("exclude-hidden", false, "Ignore files and directories whose name starts with a dot")
	flags.Bool("skip-binary", false, "Skip files that look binary instead of decoding them lossily")
	flags.String("tree", "", "File to write a directory tree of the included files to")
	rootCmd.PersistentFlags().String("config", "", "Config file (default .projector.yaml if present)")

	// Flags were just defined, so binding cannot fail.
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute(logger *zap.Logger) error {
	return NewRootCmd(logger).Execute()
}

// loadConfig wires environment variables and the optional config file into v.
func loadConfig(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("error reading flags: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
