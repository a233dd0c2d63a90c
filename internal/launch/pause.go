package launch

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// HoldOpen prints the completion notice and, when stdin is an interactive
// terminal, holds it open until the user presses Enter. Non-interactive runs
// (pipes, CI) skip the prompt: a blocked pipeline is worse than a missing
// pause.
func HoldOpen(in *os.File, out io.Writer, exitCode int) {
	fmt.Fprintf(out, "\nBot finished with exit code %d.\n", exitCode)
	if !term.IsTerminal(int(in.Fd())) {
		return
	}
	fmt.Fprint(out, "Press Enter to close...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
