package compiler

import "fmt"

// SyntaxError is the single diagnostic the parser reports: the first grammar
// mismatch in the input.
type SyntaxError struct {
	Line    int    // 1-based line of the offending token
	Msg     string // what was expected or found
	Snippet string // trimmed source text of Line, if available
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s\n  |> %s", e.Line, e.Msg, e.Snippet)
}
