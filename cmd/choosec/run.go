package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"choosec/pkg/compiler"
	"choosec/pkg/irvm"
)

var runFlags struct {
	maxSteps int
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile a program and execute it",
	Long: `Compile a program and execute the resulting IR with the built-in
interpreter. Program output goes to stdout.

Examples:
  choosec run prog.my

  # Allow long-running loops
  choosec run prog.my --max-steps 50000000`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.maxSteps, "max-steps", 0, "override instruction budget")
}

func runProgram(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	unit, err := compileFile(compiler.New(compiler.WithLogger(logger)), logger, args[0])
	if err != nil {
		return err
	}

	maxSteps := cfg.Run.MaxSteps
	if runFlags.maxSteps > 0 {
		maxSteps = runFlags.maxSteps
	}

	code, err := irvm.Exec(cmd.Context(), unit.IR, cmd.OutOrStdout(), maxSteps)
	if err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	logger.Debug("program exited", "code", code)
	return nil
}
