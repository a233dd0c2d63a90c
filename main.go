package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/NotHennadii/fogoctl/cmd"
	"github.com/NotHennadii/fogoctl/internal/launch"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// When the bot itself exited non-zero, propagate its code silently:
		// the completion notice was already printed.
		var exitErr *launch.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
