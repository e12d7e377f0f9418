// Package analyzer implements the threat-detection engine: a battery of
// independent detectors for destructive-operation classes, the privilege
// escalation policy, and the orchestration that turns one raw command line
// into an ordered list of threats.
package analyzer

// Severity ranks how catastrophic a detected operation would be.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// rank orders severities for sorting; higher is worse.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Threat is one detected destructive-pattern match. Values are immutable
// once produced; a single command may yield several distinct threats.
type Threat struct {
	Description   string   `json:"description"`
	Severity      Severity `json:"severity"`
	AffectedPaths []string `json:"affectedPaths,omitempty"`
}

// detector scans one subcommand (or, for the pipe detector, the unsplit raw
// line) for a single destructive-pattern class. Detectors are stateless and
// never fail: input they do not recognize yields no threats. The set is
// fixed at build time and composed by the Analyzer.
type detector interface {
	Name() string
	Scan(text, cwd string) []Threat
}
