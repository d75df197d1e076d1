package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	// Recover from any panics so the terminal is left usable
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nscanctl crashed: %v\n\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	Execute()
}
