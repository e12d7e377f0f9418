package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lossguard/lossguard/internal/normalize"
	"github.com/lossguard/lossguard/internal/protect"
	"github.com/lossguard/lossguard/internal/size"
)

const testHome = "/home/user"

func testResolver() *normalize.Resolver {
	return normalize.NewResolver(testHome)
}

func testRegistry(extra ...string) *protect.Registry {
	return protect.New(testResolver(), protect.Options{ExtraPaths: extra})
}

func newTestAnalyzer(oracle size.Oracle, extra ...string) *Analyzer {
	resolver := testResolver()
	return New(Options{
		Resolver: resolver,
		Registry: protect.New(resolver, protect.Options{ExtraPaths: extra}),
		Oracle:   oracle,
	})
}

func TestAnalyzeCleanCommands(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	commands := []string{
		"ls -la",
		"git status",
		"make build",
		"cat /etc/passwd",
		"echo hello > /tmp/scratch.txt",
		"rm build/output.txt",
		"find . -name '*.go'",
		"cp -r /etc /backup",
		"grep -r pattern src/",
	}
	for _, cmd := range commands {
		if got := a.Analyze(cmd, "/work/app"); len(got) != 0 {
			t.Errorf("Analyze(%q) = %+v, want no threats", cmd, got)
		}
	}
}

func TestAnalyzeWildcardRemoval(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	for _, cmd := range []string{"rm -rf /*", "rm -rf ~/*"} {
		got := a.Analyze(cmd, "/work/app")
		if len(got) != 1 {
			t.Fatalf("Analyze(%q) returned %d threats, want 1: %+v", cmd, len(got), got)
		}
		if got[0].Severity != SeverityCritical {
			t.Errorf("Analyze(%q) severity = %s, want critical", cmd, got[0].Severity)
		}
		if !strings.Contains(got[0].Description, "wildcard") {
			t.Errorf("Analyze(%q) description = %q, want mention of wildcard", cmd, got[0].Description)
		}
	}
}

func TestAnalyzeSizeThreshold(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{
		"/data/big":   200 * 1024 * 1024,
		"/data/edge":  DefaultSizeThreshold,
		"/data/small": DefaultSizeThreshold - 1,
	})

	tests := []struct {
		command string
		want    int
	}{
		{"rm -rf /data/big", 1},
		{"rm -rf /data/edge", 1},
		{"rm -rf /data/small", 0},
		{"rm /data/big", 0},
	}
	for _, tt := range tests {
		got := a.Analyze(tt.command, "/work/app")
		if len(got) != tt.want {
			t.Fatalf("Analyze(%q) returned %d threats, want %d: %+v", tt.command, len(got), tt.want, got)
		}
		if tt.want == 1 && got[0].Severity != SeverityHigh {
			t.Errorf("Analyze(%q) severity = %s, want high", tt.command, got[0].Severity)
		}
	}
}

func TestAnalyzeProtectedRemoval(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	commands := []string{
		"rm -rf /",
		"rm /etc/passwd",
		"rm -f --no-preserve-root /",
		"rm -rf ~",
	}
	for _, cmd := range commands {
		got := a.Analyze(cmd, "/work/app")
		if len(got) != 1 {
			t.Fatalf("Analyze(%q) returned %d threats, want 1: %+v", cmd, len(got), got)
		}
		if got[0].Severity != SeverityCritical {
			t.Errorf("Analyze(%q) severity = %s, want critical", cmd, got[0].Severity)
		}
	}
}

func TestAnalyzeIdempotence(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{"/data/big": 500 * 1024 * 1024})

	commands := []string{
		"sudo rm -rf /",
		"ls -la | xargs rm -f",
		"rm -rf /data/big; git clean -fdx",
		"make build",
	}
	for _, cmd := range commands {
		first := a.Analyze(cmd, "/work/app")
		second := a.Analyze(cmd, "/work/app")
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Analyze(%q) not stable:\nfirst  %+v\nsecond %+v", cmd, first, second)
		}
	}
}

// Escalation must preserve the threat count while forcing severity to
// critical and marking every description.
func TestAnalyzeEscalation(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{"/data/big": 500 * 1024 * 1024})

	commands := []string{
		"rm -rf /",
		"rm -rf /data/big",
		"git clean -fdx",
		"ls -la | xargs rm -f",
	}
	for _, cmd := range commands {
		base := a.Analyze(cmd, "/work/app")
		if len(base) != 1 {
			t.Fatalf("Analyze(%q) returned %d threats, want 1", cmd, len(base))
		}

		esc := a.Analyze("sudo "+cmd, "/work/app")
		if len(esc) != len(base) {
			t.Fatalf("Analyze(sudo %q) returned %d threats, want %d", cmd, len(esc), len(base))
		}
		if esc[0].Severity != SeverityCritical {
			t.Errorf("Analyze(sudo %q) severity = %s, want critical", cmd, esc[0].Severity)
		}
		if esc[0].Description != escalationMarker+base[0].Description {
			t.Errorf("Analyze(sudo %q) description = %q, want %q", cmd, esc[0].Description, escalationMarker+base[0].Description)
		}
	}
}

func TestAnalyzeDoasEscalation(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	got := a.Analyze("doas rm -rf /", "/work/app")
	if len(got) != 1 {
		t.Fatalf("returned %d threats, want 1: %+v", len(got), got)
	}
	if got[0].Severity != SeverityCritical || !strings.HasPrefix(got[0].Description, escalationMarker) {
		t.Errorf("threat = %+v, want escalation-marked critical", got[0])
	}
}

func TestAnalyzeQuoteAwareness(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{}, "/work/docs/annual report")

	got := a.Analyze(`rm -rf "/work/docs/annual report"`, "/work/app")
	if len(got) != 1 {
		t.Fatalf("quoted target returned %d threats, want 1: %+v", len(got), got)
	}
	if got[0].Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", got[0].Severity)
	}
	want := []string{"/work/docs/annual report"}
	if !reflect.DeepEqual(got[0].AffectedPaths, want) {
		t.Errorf("affected paths = %v, want %v", got[0].AffectedPaths, want)
	}

	// Unquoted, the same text is two harmless targets.
	if got := a.Analyze("rm -rf /work/docs/annual report", "/work/app"); len(got) != 0 {
		t.Errorf("unquoted target returned %+v, want no threats", got)
	}
}

func TestAnalyzeCompoundCommands(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{"/data/big": 500 * 1024 * 1024})

	tests := []struct {
		command string
		want    int
	}{
		{"cd /tmp && rm -rf /", 1},
		{"rm -rf / ; rm -rf ~/*", 2},
		{"echo done && rm -rf /data/big || echo fail", 1},
		{"ls && make && make install", 0},
	}
	for _, tt := range tests {
		got := a.Analyze(tt.command, "/work/app")
		if len(got) != tt.want {
			t.Errorf("Analyze(%q) returned %d threats, want %d: %+v", tt.command, len(got), tt.want, got)
		}
	}
}

func TestAnalyzeSeverityOrdering(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{"/data/big": 500 * 1024 * 1024})

	// Detection order is high first here; the result must sort critical first.
	got := a.Analyze("rm -rf /data/big; rm -rf /", "/work/app")
	if len(got) != 2 {
		t.Fatalf("returned %d threats, want 2: %+v", len(got), got)
	}
	if got[0].Severity != SeverityCritical || got[1].Severity != SeverityHigh {
		t.Errorf("severities = [%s %s], want [critical high]", got[0].Severity, got[1].Severity)
	}
}

func TestAnalyzeFindExecSmallDirectory(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{"/work/app": 5 * 1024})

	if got := a.Analyze(`find . -exec rm {} \;`, "/work/app"); len(got) != 0 {
		t.Errorf("returned %+v, want no threats", got)
	}
}

func TestAnalyzeGitClean(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	got := a.Analyze("git clean -fdx", "/work/app")
	if len(got) != 1 {
		t.Fatalf("returned %d threats, want 1: %+v", len(got), got)
	}
	if got[0].Severity != SeverityHigh {
		t.Errorf("severity = %s, want high", got[0].Severity)
	}
	for _, wantSubstr := range []string{"untracked directories", "ignored files"} {
		if !strings.Contains(got[0].Description, wantSubstr) {
			t.Errorf("description = %q, want mention of %q", got[0].Description, wantSubstr)
		}
	}
}

func TestAnalyzePipedDeletion(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	got := a.Analyze("ls -la | xargs rm -f", "/work/app")
	if len(got) != 1 {
		t.Fatalf("returned %d threats, want 1: %+v", len(got), got)
	}
	if got[0].Severity != SeverityHigh {
		t.Errorf("severity = %s, want high", got[0].Severity)
	}
	if !strings.Contains(got[0].Description, "piped deletion") {
		t.Errorf("description = %q, want mention of piped deletion", got[0].Description)
	}
}

func TestAnalyzeDeviceWrite(t *testing.T) {
	a := newTestAnalyzer(size.Fixed{})

	got := a.Analyze("dd if=/dev/zero of=/dev/disk2", "/work/app")
	if len(got) != 1 {
		t.Fatalf("returned %d threats, want 1: %+v", len(got), got)
	}
	if got[0].Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", got[0].Severity)
	}
}

func TestAnalyzeDefaultOptions(t *testing.T) {
	// Zero options must still produce a working analyzer.
	a := New(Options{})
	if got := a.Analyze("echo hello", "/tmp"); len(got) != 0 {
		t.Errorf("Analyze(echo) = %+v, want no threats", got)
	}
}
