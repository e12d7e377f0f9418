// Package render formats threat reports for terminal output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lossguard/lossguard/internal/analyzer"
)

// Styles contains the lipgloss renderers for the threat report.
type Styles struct {
	Header        lipgloss.Style
	Command       lipgloss.Style
	BadgeCritical lipgloss.Style
	BadgeHigh     lipgloss.Style
	BadgeMedium   lipgloss.Style
	Description   lipgloss.Style
	Path          lipgloss.Style
}

// DefaultStyles returns the colored styles used on capable terminals.
func DefaultStyles() *Styles {
	return &Styles{
		Header:        lipgloss.NewStyle().Bold(true),
		Command:       lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		BadgeCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Padding(0, 1),
		BadgeHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")).Padding(0, 1),
		BadgeMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7")).Padding(0, 1),
		Description:   lipgloss.NewStyle(),
		Path:          lipgloss.NewStyle().Faint(true),
	}
}

// PlainStyles returns styles that pass text through unmodified, for
// --no-color and non-terminal output.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header:        plain,
		Command:       plain,
		BadgeCritical: plain,
		BadgeHigh:     plain,
		BadgeMedium:   plain,
		Description:   plain,
		Path:          plain,
	}
}

func (s *Styles) badge(sev analyzer.Severity) string {
	label := strings.ToUpper(string(sev))
	switch sev {
	case analyzer.SeverityCritical:
		return s.BadgeCritical.Render(label)
	case analyzer.SeverityHigh:
		return s.BadgeHigh.Render(label)
	default:
		return s.BadgeMedium.Render(label)
	}
}

// Threats writes the human-readable report: the command, a count line, and
// one badged line per threat with its affected paths indented beneath.
func Threats(w io.Writer, command string, threats []analyzer.Threat, styles *Styles) {
	fmt.Fprintf(w, "%s %s\n", styles.Header.Render("Command:"), styles.Command.Render(command))

	count := fmt.Sprintf("%d threats detected", len(threats))
	if len(threats) == 1 {
		count = "1 threat detected"
	}
	fmt.Fprintf(w, "%s\n", styles.Header.Render(count))

	for _, t := range threats {
		fmt.Fprintf(w, "  %s %s\n", styles.badge(t.Severity), styles.Description.Render(t.Description))
		for _, p := range t.AffectedPaths {
			fmt.Fprintf(w, "      %s\n", styles.Path.Render(p))
		}
	}
}

// JSON writes the machine-readable report. A threat-free result encodes an
// empty array, never null.
func JSON(w io.Writer, command string, threats []analyzer.Threat) error {
	if threats == nil {
		threats = []analyzer.Threat{}
	}
	report := struct {
		Command string            `json:"command"`
		Threats []analyzer.Threat `json:"threats"`
	}{Command: command, Threats: threats}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
