package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lossguard/lossguard/internal/testutil"
)

func TestInstallHooksFile(t *testing.T) {
	dir := t.TempDir()
	hooksPath := filepath.Join(dir, "windsurf", "hooks.json")

	var out bytes.Buffer
	testutil.RequireNoError(t, installHooksFile(&out, hooksPath, "Windsurf", "pre_run_command"), "install")

	data, err := os.ReadFile(hooksPath)
	testutil.RequireNoError(t, err, "read hooks.json")

	var parsed struct {
		Hooks map[string][]struct {
			Command    string `json:"command"`
			ShowOutput bool   `json:"show_output"`
		} `json:"hooks"`
	}
	testutil.RequireNoError(t, json.Unmarshal(data, &parsed), "parse hooks.json")
	entries := parsed.Hooks["pre_run_command"]
	testutil.RequireLen(t, entries, 1, "pre_run_command entries")
	testutil.RequireEqual(t, hookCommand, entries[0].Command, "hook command")
	if !entries[0].ShowOutput {
		t.Fatal("show_output should be true")
	}
	if !strings.Contains(out.String(), "hook installed") {
		t.Fatalf("output = %q, want install confirmation", out.String())
	}
}

func TestInstallHooksFileAlreadyConfigured(t *testing.T) {
	dir := t.TempDir()
	hooksPath := filepath.Join(dir, "hooks.json")
	testutil.RequireNoError(t, installHooksFile(io.Discard, hooksPath, "Cursor", "beforeShellExecution"), "first install")

	var out bytes.Buffer
	testutil.RequireNoError(t, installHooksFile(&out, hooksPath, "Cursor", "beforeShellExecution"), "second install")
	if !strings.Contains(out.String(), "already configured") {
		t.Fatalf("output = %q, want already-configured notice", out.String())
	}
}

func TestInstallHooksFileForeignFileUntouched(t *testing.T) {
	dir := t.TempDir()
	hooksPath := filepath.Join(dir, "hooks.json")
	original := `{"hooks":{"post_run_command":[{"command":"other-tool"}]}}`
	testutil.RequireNoError(t, os.WriteFile(hooksPath, []byte(original), 0o644), "seed hooks.json")

	var out bytes.Buffer
	testutil.RequireNoError(t, installHooksFile(&out, hooksPath, "Cursor", "beforeShellExecution"), "install")

	data, err := os.ReadFile(hooksPath)
	testutil.RequireNoError(t, err, "read hooks.json")
	testutil.RequireEqual(t, original, string(data), "foreign file content")
	if !strings.Contains(out.String(), "add this") {
		t.Fatalf("output = %q, want manual instructions", out.String())
	}
}

func TestRemoveHooksFile(t *testing.T) {
	dir := t.TempDir()
	hooksPath := filepath.Join(dir, "hooks.json")
	testutil.RequireNoError(t, installHooksFile(io.Discard, hooksPath, "Windsurf", "pre_run_command"), "install")

	var out bytes.Buffer
	testutil.RequireNoError(t, removeHooksFile(&out, hooksPath, "Windsurf"), "remove")

	if _, err := os.Stat(hooksPath); !os.IsNotExist(err) {
		t.Fatalf("hooks.json should be gone, stat err = %v", err)
	}
	if _, err := os.Stat(hooksPath + ".bak"); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
}

func TestRemoveHooksFileMissing(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "hooks.json")
	testutil.RequireNoError(t, removeHooksFile(&out, path, "Cursor"), "remove")
	if !strings.Contains(out.String(), "nothing to disable") {
		t.Fatalf("output = %q, want nothing-to-disable notice", out.String())
	}
}

func TestRemoveHooksFileForeignFileUntouched(t *testing.T) {
	dir := t.TempDir()
	hooksPath := filepath.Join(dir, "hooks.json")
	original := `{"hooks":{"pre_run_command":[{"command":"other-tool"}]}}`
	testutil.RequireNoError(t, os.WriteFile(hooksPath, []byte(original), 0o644), "seed hooks.json")

	testutil.RequireNoError(t, removeHooksFile(io.Discard, hooksPath, "Windsurf"), "remove")

	data, err := os.ReadFile(hooksPath)
	testutil.RequireNoError(t, err, "read hooks.json")
	testutil.RequireEqual(t, original, string(data), "foreign file content")
}

func TestInstallClaudeCodeHook(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")

	testutil.RequireNoError(t, installClaudeCodeHook(io.Discard, settingsPath), "install")

	settings, err := readJSONSettings(settingsPath)
	testutil.RequireNoError(t, err, "read settings")
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		t.Fatalf("settings missing hooks object: %v", settings)
	}
	preToolUse, _ := hooks["PreToolUse"].([]any)
	testutil.RequireLen(t, preToolUse, 1, "PreToolUse entries")
	if !isLossguardEntry(preToolUse[0]) {
		t.Fatalf("installed entry not recognized: %v", preToolUse[0])
	}
}

func TestInstallClaudeCodeHookPreservesSettings(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	existing := map[string]any{
		"model": "opus",
		"hooks": map[string]any{
			"PreToolUse": []any{
				map[string]any{
					"matcher": "Bash",
					"hooks":   []any{map[string]any{"type": "command", "command": "other-tool hook"}},
				},
			},
		},
	}
	testutil.RequireNoError(t, writeJSONSettings(settingsPath, existing), "seed settings")

	testutil.RequireNoError(t, installClaudeCodeHook(io.Discard, settingsPath), "install")

	settings, err := readJSONSettings(settingsPath)
	testutil.RequireNoError(t, err, "read settings")
	testutil.RequireEqual(t, "opus", settings["model"].(string), "unrelated key")
	hooks := settings["hooks"].(map[string]any)
	preToolUse, _ := hooks["PreToolUse"].([]any)
	testutil.RequireLen(t, preToolUse, 2, "PreToolUse entries")
}

func TestInstallClaudeCodeHookIdempotent(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	testutil.RequireNoError(t, installClaudeCodeHook(io.Discard, settingsPath), "first install")
	testutil.RequireNoError(t, installClaudeCodeHook(io.Discard, settingsPath), "second install")

	settings, err := readJSONSettings(settingsPath)
	testutil.RequireNoError(t, err, "read settings")
	hooks := settings["hooks"].(map[string]any)
	preToolUse, _ := hooks["PreToolUse"].([]any)
	testutil.RequireLen(t, preToolUse, 1, "PreToolUse entries")
}

func TestRemoveClaudeCodeHook(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	existing := map[string]any{"model": "opus"}
	testutil.RequireNoError(t, writeJSONSettings(settingsPath, existing), "seed settings")
	testutil.RequireNoError(t, installClaudeCodeHook(io.Discard, settingsPath), "install")

	testutil.RequireNoError(t, removeClaudeCodeHook(io.Discard, settingsPath), "remove")

	settings, err := readJSONSettings(settingsPath)
	testutil.RequireNoError(t, err, "read settings")
	testutil.RequireEqual(t, "opus", settings["model"].(string), "unrelated key")
	if _, ok := settings["hooks"]; ok {
		t.Fatalf("empty hooks object should be dropped: %v", settings)
	}
}

func TestRemoveClaudeCodeHookKeepsOtherEntries(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	other := map[string]any{
		"matcher": "Bash",
		"hooks":   []any{map[string]any{"type": "command", "command": "other-tool hook"}},
	}
	existing := map[string]any{
		"hooks": map[string]any{"PreToolUse": []any{other}},
	}
	testutil.RequireNoError(t, writeJSONSettings(settingsPath, existing), "seed settings")
	testutil.RequireNoError(t, installClaudeCodeHook(io.Discard, settingsPath), "install")

	testutil.RequireNoError(t, removeClaudeCodeHook(io.Discard, settingsPath), "remove")

	settings, err := readJSONSettings(settingsPath)
	testutil.RequireNoError(t, err, "read settings")
	hooks := settings["hooks"].(map[string]any)
	preToolUse, _ := hooks["PreToolUse"].([]any)
	testutil.RequireLen(t, preToolUse, 1, "PreToolUse entries")
	if isLossguardEntry(preToolUse[0]) {
		t.Fatalf("surviving entry should be the foreign one: %v", preToolUse[0])
	}
}

func TestIsLossguardEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry any
		want  bool
	}{
		{"our entry", claudeHookEntry, true},
		{"foreign command", map[string]any{"hooks": []any{map[string]any{"command": "other"}}}, false},
		{"not a map", "lossguard hook", false},
		{"empty map", map[string]any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.RequireEqual(t, tt.want, isLossguardEntry(tt.entry), "entry match")
		})
	}
}
