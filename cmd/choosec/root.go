package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"choosec/pkg/compiler"
	"choosec/pkg/config"
	"choosec/pkg/logging"
	"choosec/pkg/utils"
)

// defaultConfigFile is read when present; it is only required when named
// explicitly with --config.
const defaultConfigFile = "choosec.yaml"

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var buildFlags struct {
	output string
}

var rootCmd = &cobra.Command{
	Use:   "choosec <file>",
	Short: "Compile a choose-language program to LLVM IR",
	Long: `choosec compiles a program written in a tiny integer language to a
textual LLVM IR module.

The output file is the input path with its last three characters replaced by
the configured extension (".ll" by default), so prog.my becomes prog.ll.

A program with a syntax error still compiles: the module it produces prints
"Line N: syntax error" when run.`,
	Version:       Version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBuild,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (text, json)")

	rootCmd.Flags().StringVarP(&buildFlags.output, "output", "o", "", "override output path")
}

// setup loads configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	explicit := cmd.Root().PersistentFlags().Changed("config")
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile, !explicit)
	if err != nil {
		return nil, nil, err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// compileFile reads path and compiles it. A syntax error is logged, not
// returned.
func compileFile(c *compiler.Compiler, logger *slog.Logger, path string) (*compiler.Unit, error) {
	src, err := utils.ReadSource(path)
	if err != nil {
		return nil, err
	}
	unit, err := c.Compile(src)
	if err != nil {
		return nil, err
	}
	if unit.Err != nil {
		logger.Warn("syntax error", "file", path, "line", unit.Err.Line, "msg", unit.Err.Msg)
	}
	return unit, nil
}

// buildFile compiles path and writes the IR next to it.
func buildFile(c *compiler.Compiler, logger *slog.Logger, cfg *config.Config, path, output string) (*compiler.Unit, error) {
	if output == "" {
		var err error
		output, err = utils.OutputPath(path, cfg.Output.Extension)
		if err != nil {
			return nil, err
		}
	}

	same, err := utils.SamePath(path, output)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, fmt.Errorf("output %q would overwrite the source file", output)
	}

	unit, err := compileFile(c, logger, path)
	if err != nil {
		return nil, err
	}
	if err := utils.WriteIR(output, unit.IR); err != nil {
		return nil, err
	}
	logger.Info("wrote IR", "input", path, "output", output, "session", unit.SessionID)
	return unit, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	c := compiler.New(compiler.WithLogger(logger))
	_, err = buildFile(c, logger, cfg, args[0], buildFlags.output)
	return err
}
