package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lossguard/lossguard/internal/config"
)

// hookCommand is the invocation installed into agent-IDE hook configs.
const hookCommand = "lossguard hook"

var setupDisable bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the lossguard hook into an agent IDE",
	Long: `Install or remove the pre-execution hook so every shell command an
agent IDE runs is inspected by lossguard first.

  lossguard setup claude-code           # install Claude Code PreToolUse hook
  lossguard setup claude-code --disable # remove it
  lossguard setup cursor                # install Cursor beforeShellExecution hook
  lossguard setup windsurf              # install Windsurf pre_run_command hook

Run without a subcommand to print integration instructions and status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSetupInstructions(cmd.OutOrStdout())
		return nil
	},
}

var setupClaudeCodeCmd = &cobra.Command{
	Use:   "claude-code",
	Short: "Install the Claude Code PreToolUse hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		settingsPath := filepath.Join(os.Getenv("HOME"), ".claude", "settings.json")
		if setupDisable {
			return removeClaudeCodeHook(cmd.OutOrStdout(), settingsPath)
		}
		return installClaudeCodeHook(cmd.OutOrStdout(), settingsPath)
	},
}

var setupCursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Install the Cursor beforeShellExecution hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hooksPath := filepath.Join(os.Getenv("HOME"), ".cursor", "hooks.json")
		if setupDisable {
			return removeHooksFile(cmd.OutOrStdout(), hooksPath, "Cursor")
		}
		return installHooksFile(cmd.OutOrStdout(), hooksPath, "Cursor", "beforeShellExecution")
	},
}

var setupWindsurfCmd = &cobra.Command{
	Use:   "windsurf",
	Short: "Install the Windsurf pre_run_command hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hooksPath := filepath.Join(os.Getenv("HOME"), ".codeium", "windsurf", "hooks.json")
		if setupDisable {
			return removeHooksFile(cmd.OutOrStdout(), hooksPath, "Windsurf")
		}
		return installHooksFile(cmd.OutOrStdout(), hooksPath, "Windsurf", "pre_run_command")
	},
}

func init() {
	for _, c := range []*cobra.Command{setupClaudeCodeCmd, setupCursorCmd, setupWindsurfCmd} {
		c.Flags().BoolVar(&setupDisable, "disable", false, "Remove the lossguard hook")
		setupCmd.AddCommand(c)
	}
	rootCmd.AddCommand(setupCmd)
}

// claudeHookEntry is the object merged into Claude Code's PreToolUse list.
var claudeHookEntry = map[string]any{
	"matcher": "Bash",
	"hooks": []any{
		map[string]any{
			"type":    "command",
			"command": hookCommand,
		},
	},
}

// installClaudeCodeHook merges the PreToolUse entry into settings.json,
// preserving everything else the file already holds.
func installClaudeCodeHook(out io.Writer, settingsPath string) error {
	settings, err := readJSONSettings(settingsPath)
	if err != nil {
		return err
	}

	hooks := getOrCreateMap(settings, "hooks")
	preToolUse, _ := hooks["PreToolUse"].([]any)
	for _, entry := range preToolUse {
		if isLossguardEntry(entry) {
			fmt.Fprintf(out, "Claude Code hook already configured: %s\n", settingsPath)
			return nil
		}
	}

	hooks["PreToolUse"] = append(preToolUse, claudeHookEntry)
	settings["hooks"] = hooks

	if err := writeJSONSettings(settingsPath, settings); err != nil {
		return err
	}

	fmt.Fprintf(out, "PreToolUse hook installed: %s\n", settingsPath)
	fmt.Fprintln(out, "Restart Claude Code to activate it.")
	fmt.Fprintln(out, "To remove: lossguard setup claude-code --disable")
	return nil
}

// removeClaudeCodeHook filters the lossguard entry out of PreToolUse and
// rewrites settings.json, leaving unrelated hooks in place.
func removeClaudeCodeHook(out io.Writer, settingsPath string) error {
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "no Claude Code settings.json found, nothing to disable")
		return nil
	}

	settings, err := readJSONSettings(settingsPath)
	if err != nil {
		return err
	}

	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		fmt.Fprintln(out, "Claude Code settings have no hooks, nothing to disable")
		return nil
	}

	preToolUse, _ := hooks["PreToolUse"].([]any)
	filtered := make([]any, 0, len(preToolUse))
	removed := false
	for _, entry := range preToolUse {
		if isLossguardEntry(entry) {
			removed = true
			continue
		}
		filtered = append(filtered, entry)
	}
	if !removed {
		fmt.Fprintln(out, "lossguard hook not present in Claude Code settings, nothing to disable")
		return nil
	}

	if len(filtered) == 0 {
		delete(hooks, "PreToolUse")
	} else {
		hooks["PreToolUse"] = filtered
	}
	if len(hooks) == 0 {
		delete(settings, "hooks")
	} else {
		settings["hooks"] = hooks
	}

	if err := writeJSONSettings(settingsPath, settings); err != nil {
		return err
	}

	fmt.Fprintf(out, "lossguard hook removed from %s\n", settingsPath)
	fmt.Fprintln(out, "Re-enable anytime with: lossguard setup claude-code")
	return nil
}

// installHooksFile writes a fresh hooks.json wiring the given event to the
// lossguard hook. Cursor and Windsurf share the file shape and differ only
// in the event name. An existing file is never overwritten.
func installHooksFile(out io.Writer, hooksPath, ideName, event string) error {
	if data, err := os.ReadFile(hooksPath); err == nil {
		if strings.Contains(string(data), hookCommand) {
			fmt.Fprintf(out, "%s hook already configured: %s\n", ideName, hooksPath)
			return nil
		}
		fmt.Fprintf(out, "existing %s found; add this to its \"hooks\" object:\n\n", hooksPath)
		fmt.Fprintf(out, "  %q: [\n    { \"command\": %q, \"show_output\": true }\n  ]\n", event, hookCommand)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(hooksPath), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(hooksPath), err)
	}
	if err := os.WriteFile(hooksPath, []byte(hooksFileContent(event)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", hooksPath, err)
	}

	fmt.Fprintf(out, "%s hook installed: %s\n", ideName, hooksPath)
	fmt.Fprintf(out, "Restart %s to activate it.\n", ideName)
	fmt.Fprintf(out, "To remove: lossguard setup %s --disable\n", strings.ToLower(ideName))
	return nil
}

// removeHooksFile disables a hooks.json-based integration by renaming the
// file to a .bak sibling so the previous state stays recoverable.
func removeHooksFile(out io.Writer, hooksPath, ideName string) error {
	data, err := os.ReadFile(hooksPath)
	if os.IsNotExist(err) {
		fmt.Fprintf(out, "no hooks.json found for %s, nothing to disable\n", ideName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", hooksPath, err)
	}
	if !strings.Contains(string(data), hookCommand) {
		fmt.Fprintf(out, "%s hooks.json does not reference lossguard, nothing to disable\n", ideName)
		return nil
	}

	backupPath := hooksPath + ".bak"
	if err := os.Rename(hooksPath, backupPath); err != nil {
		return fmt.Errorf("rename %s: %w", hooksPath, err)
	}

	fmt.Fprintf(out, "lossguard hook disabled for %s (backup: %s)\n", ideName, backupPath)
	fmt.Fprintf(out, "Re-enable anytime with: lossguard setup %s\n", strings.ToLower(ideName))
	return nil
}

func hooksFileContent(event string) string {
	return fmt.Sprintf(`{
  "hooks": {
    %q: [
      {
        "command": %q,
        "show_output": true
      }
    ]
  }
}
`, event, hookCommand)
}

// isLossguardEntry reports whether a PreToolUse entry invokes our hook.
func isLossguardEntry(entry any) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	subHooks, _ := m["hooks"].([]any)
	for _, h := range subHooks {
		if hm, ok := h.(map[string]any); ok && hm["command"] == hookCommand {
			return true
		}
	}
	return false
}

func readJSONSettings(path string) (map[string]any, error) {
	settings := make(map[string]any)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return settings, nil
}

func writeJSONSettings(path string, settings map[string]any) error {
	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func getOrCreateMap(parent map[string]any, key string) map[string]any {
	if v, ok := parent[key].(map[string]any); ok {
		return v
	}
	m := make(map[string]any)
	parent[key] = m
	return m
}

func printSetupInstructions(out io.Writer) {
	fmt.Fprintln(out, "lossguard integrates with agent IDEs through their native hooks:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  lossguard setup claude-code   # Claude Code PreToolUse hook")
	fmt.Fprintln(out, "  lossguard setup cursor        # Cursor beforeShellExecution hook")
	fmt.Fprintln(out, "  lossguard setup windsurf      # Windsurf pre_run_command hook")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Direct usage:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  lossguard check -- <command>  # analyze one command")
	fmt.Fprintln(out, "  lossguard paths               # show the protected-path registry")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Set %s=1 to bypass the hook for the current session.\n", bypassEnv)
	fmt.Fprintln(out)
	printSetupStatus(out)
}

// printSetupStatus reports what is installed where, checking file presence
// only; nothing here creates directories.
func printSetupStatus(out io.Writer) {
	fmt.Fprintln(out, "Status:")

	if binPath, err := exec.LookPath("lossguard"); err == nil {
		fmt.Fprintf(out, "  binary       %s\n", binPath)
	} else {
		fmt.Fprintln(out, "  binary       not found in PATH")
	}

	home := os.Getenv("HOME")
	reportFile(out, "config", filepath.Join(home, config.DirName, config.ConfigFileName), "using defaults")
	reportFile(out, "guard file", filepath.Join(home, config.DirName, config.GuardFileName), "none")

	reportHook(out, "Claude Code", filepath.Join(home, ".claude", "settings.json"))
	reportHook(out, "Cursor", filepath.Join(home, ".cursor", "hooks.json"))
	reportHook(out, "Windsurf", filepath.Join(home, ".codeium", "windsurf", "hooks.json"))
}

func reportFile(out io.Writer, label, path, absent string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  %-12s %s\n", label, path)
	} else {
		fmt.Fprintf(out, "  %-12s %s\n", label, absent)
	}
}

func reportHook(out io.Writer, ideName, path string) {
	data, err := os.ReadFile(path)
	if err == nil && strings.Contains(string(data), hookCommand) {
		fmt.Fprintf(out, "  %-12s hook installed\n", ideName)
		return
	}
	fmt.Fprintf(out, "  %-12s hook not installed\n", ideName)
}
