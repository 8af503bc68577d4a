// focustrack is a Pomodoro-style focus timer for the terminal.
//
// Usage:
//
//	focustrack [run|serve|history|settings] [--verbose] [--quiet] [--guest]
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
