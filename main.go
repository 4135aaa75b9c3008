// The main package for the vacwatch executable.
package main

import (
	"github.com/vacwatch/vacwatch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
