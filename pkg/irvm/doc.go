// Package irvm loads and executes the IR modules produced by package
// compiler. It understands exactly the instructions the compiler emits and is
// used to run compiled programs without an external LLVM toolchain.
//
// Pipeline: IR text → Load (blocks + string constants) → Machine.Run
package irvm
