// Choosec compiles programs in a small integer language to textual LLVM IR.
//
// The language has integer variables, + - * /, print, if, while and the
// four-way choose(c, zero, positive, negative) expression.
//
// Usage:
//
//	# Compile prog.my to prog.ll
//	choosec prog.my
//
//	# Compile and execute with the built-in IR interpreter
//	choosec run prog.my
//
//	# Show tokens, AST, symbol table and IR
//	choosec dump prog.my
//
//	# Recompile on every save and serve metrics
//	choosec watch prog.my --metrics-address 127.0.0.1:9464
package main

func main() {
	Execute()
}
