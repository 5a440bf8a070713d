// Package compiler provides the scanner, parser and code generator for the
// choose language, a small integer language with print, if, while and a
// four-way choose expression. It emits textual LLVM-style SSA IR.
//
// Pipeline: source → Lexer (tokens on demand) → Parser (AST + symbol table)
// → Session (IR text)
package compiler
