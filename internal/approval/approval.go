// Package approval implements the human fallback: when the engine flags a
// command, a person approves or denies it at the terminal, and the absence
// of a person means deny.
package approval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/lossguard/lossguard/internal/analyzer"
)

// Decision is the outcome of an approval request.
type Decision struct {
	Approved bool
	Action   string
}

// Action values recorded in diagnostics.
const (
	ActionApproveOnce            = "approve_once"
	ActionDeny                   = "deny"
	ActionAutoDenyNonInteractive = "auto_deny_non_interactive"
	ActionInputError             = "error_reading_input"
)

// IsInteractive reports whether stdin is a terminal a human can answer on.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask presents the flagged command with its threats on stderr and waits for
// an approve/deny answer. Non-interactive stdin denies immediately: silence
// is never consent.
func Ask(command string, threats []analyzer.Threat) Decision {
	if !IsInteractive() {
		return Decision{Action: ActionAutoDenyNonInteractive}
	}
	return prompt(os.Stdin, os.Stderr, command, threats)
}

// prompt is separated from Ask so tests can drive it with fake streams.
func prompt(in io.Reader, out io.Writer, command string, threats []analyzer.Threat) Decision {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "APPROVAL REQUIRED")
	fmt.Fprintf(out, "Command: %s\n", command)
	fmt.Fprintln(out)
	for _, t := range threats {
		fmt.Fprintf(out, "  [%s] %s\n", strings.ToUpper(string(t.Severity)), t.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  [a] approve once - run this command")
	fmt.Fprintln(out, "  [d] deny - block this command")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Your choice [a/d]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return Decision{Action: ActionInputError}
		}

		switch strings.TrimSpace(strings.ToLower(line)) {
		case "a", "approve", "y", "yes":
			return Decision{Approved: true, Action: ActionApproveOnce}
		case "d", "deny", "n", "no":
			return Decision{Action: ActionDeny}
		default:
			fmt.Fprintln(out, "Please answer 'a' to approve or 'd' to deny.")
		}
	}
}
