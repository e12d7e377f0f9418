package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lossguard/lossguard/internal/redact"
)

// bypassEnv disables blocking entirely; the hook still answers each dialect
// in its expected shape so the IDE is never left hanging.
const bypassEnv = "LOSSGUARD_BYPASS"

// hookKind is the IDE dialect inferred from the payload shape.
type hookKind int

const (
	hookUnknown hookKind = iota
	hookClaudeCode
	hookCursor
	hookWindsurf
	hookIgnored
)

func (k hookKind) String() string {
	switch k {
	case hookClaudeCode:
		return "claude-code"
	case hookCursor:
		return "cursor"
	case hookWindsurf:
		return "windsurf"
	case hookIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// hookPayload is the union of the three JSON shapes the supported IDEs send.
//
//	Claude Code: {"hook_event_name": "PreToolUse", "tool_name": "Bash", "tool_input": {"command": "..."}}
//	Cursor:      {"command": "...", "cwd": "..."}
//	Windsurf:    {"agent_action_name": "pre_run_command", "tool_info": {"command_line": "...", "cwd": "..."}}
type hookPayload struct {
	// Windsurf fields
	AgentActionName string       `json:"agent_action_name"`
	ToolInfo        windsurfTool `json:"tool_info"`

	// Cursor fields
	Command string `json:"command"`
	Cwd     string `json:"cwd"`

	// Claude Code fields
	HookEventName string         `json:"hook_event_name"`
	ToolName      string         `json:"tool_name"`
	ToolInput     claudeToolArgs `json:"tool_input"`
}

type windsurfTool struct {
	CommandLine string `json:"command_line"`
	Cwd         string `json:"cwd"`
}

type claudeToolArgs struct {
	Command string `json:"command"`
}

// hookRequest is the dialect-independent part the engine cares about.
type hookRequest struct {
	Command string
	Cwd     string
}

// cursorResponse is the JSON permission object Cursor expects on stdout.
type cursorResponse struct {
	Continue     bool   `json:"continue"`
	Permission   string `json:"permission"`
	UserMessage  string `json:"user_message,omitempty"`
	AgentMessage string `json:"agent_message,omitempty"`
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "IDE hook handler for Claude Code, Cursor, and Windsurf",
	Long: `Reads an IDE hook JSON payload from stdin, analyzes the shell command
it carries, and answers in the dialect the IDE expects:

  Claude Code — block = reason on stdout + exit code 2
  Cursor      — block = JSON permission object with "deny"
  Windsurf    — block = reason on stderr + exit code 2

Threat-free commands pass silently. Payloads that do not parse are
warned about and passed through: a malformed hook must not wedge the
IDE. Set ` + bypassEnv + `=1 to disable blocking temporarily.`,
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	if os.Getenv(bypassEnv) == "1" {
		data, _ := io.ReadAll(cmd.InOrStdin())
		if _, kind := parseHookPayload(data); kind == hookCursor {
			writeCursorAllow(cmd.OutOrStdout())
		}
		return nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read hook payload: %w", err)
	}

	req, kind := parseHookPayload(data)
	switch kind {
	case hookUnknown:
		fmt.Fprintln(os.Stderr, "lossguard: warning: unrecognized hook payload, passing through")
		return nil
	case hookIgnored:
		return nil
	}

	if req.Command == "" {
		if kind == hookCursor {
			writeCursorAllow(cmd.OutOrStdout())
		}
		return nil
	}

	eng, err := newEngine("")
	if err != nil {
		// A broken config must not wedge the IDE: warn and pass.
		fmt.Fprintf(os.Stderr, "lossguard: warning: %v\n", err)
		if kind == hookCursor {
			writeCursorAllow(cmd.OutOrStdout())
		}
		return nil
	}

	cwd := req.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	threats := eng.analyzer.Analyze(req.Command, cwd)
	eng.log.Debug("hook evaluation",
		"id", uuid.NewString(),
		"dialect", kind.String(),
		"command", redact.Redact(req.Command),
		"threats", len(threats))

	if len(threats) == 0 {
		if kind == hookCursor {
			writeCursorAllow(cmd.OutOrStdout())
		}
		return nil
	}

	reason := joinDescriptions(threats)
	switch kind {
	case hookCursor:
		writeCursorDeny(cmd.OutOrStdout(), reason)
	case hookClaudeCode:
		fmt.Fprintf(cmd.OutOrStdout(), "BLOCKED by lossguard\n%s\n", reason)
		os.Exit(2)
	case hookWindsurf:
		fmt.Fprintf(os.Stderr, "BLOCKED by lossguard\n%s\n", reason)
		os.Exit(2)
	}
	return nil
}

// parseHookPayload infers the IDE dialect from the payload shape and pulls
// out the command. Unparseable input is hookUnknown; parseable input that is
// not a shell execution is hookIgnored.
func parseHookPayload(data []byte) (hookRequest, hookKind) {
	var p hookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return hookRequest{}, hookUnknown
	}

	switch {
	case p.HookEventName != "":
		if p.ToolName != "Bash" {
			return hookRequest{}, hookIgnored
		}
		return hookRequest{Command: p.ToolInput.Command}, hookClaudeCode
	case p.Command != "":
		return hookRequest{Command: p.Command, Cwd: p.Cwd}, hookCursor
	case p.AgentActionName == "pre_run_command":
		return hookRequest{Command: p.ToolInfo.CommandLine, Cwd: p.ToolInfo.Cwd}, hookWindsurf
	default:
		return hookRequest{}, hookIgnored
	}
}

func writeCursorAllow(w io.Writer) {
	writeCursor(w, cursorResponse{Continue: true, Permission: "allow"})
}

func writeCursorDeny(w io.Writer, reason string) {
	writeCursor(w, cursorResponse{
		Continue:     true,
		Permission:   "deny",
		UserMessage:  "BLOCKED by lossguard: " + reason,
		AgentMessage: reason,
	})
}

func writeCursor(w io.Writer, resp cursorResponse) {
	data, _ := json.Marshal(resp)
	fmt.Fprintln(w, string(data))
}
