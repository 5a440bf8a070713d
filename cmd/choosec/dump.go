package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"choosec/pkg/compiler"
	"choosec/pkg/utils"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the tokens, AST, symbol table and IR of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := utils.ReadSource(args[0])
		if err != nil {
			return err
		}
		return dump(cmd.OutOrStdout(), src)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func dump(w io.Writer, src string) error {
	tokens := compiler.Lex(src)
	fmt.Fprintf(w, "Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Fprintln(w, " ", tok)
	}
	fmt.Fprintln(w)

	prog, err := compiler.Parse(src)
	if err != nil {
		fmt.Fprintln(w, "parse error:", err)
		fmt.Fprintln(w)
		unit, cerr := compiler.Compile(src)
		if cerr != nil {
			return cerr
		}
		fmt.Fprintln(w, "Generated IR")
		fmt.Fprint(w, unit.IR)
		return nil
	}

	fmt.Fprintln(w, "AST")
	for _, s := range prog.Stmts {
		fmt.Fprintln(w, " ", s)
	}
	fmt.Fprintln(w)

	ir, err := compiler.Generate(prog)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}

	fmt.Fprintln(w, "Generated IR")
	fmt.Fprint(w, ir)
	fmt.Fprintln(w)
	fmt.Fprint(w, prog.Syms)
	return nil
}
