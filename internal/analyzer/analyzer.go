package analyzer

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/lossguard/lossguard/internal/normalize"
	"github.com/lossguard/lossguard/internal/protect"
	"github.com/lossguard/lossguard/internal/shell"
	"github.com/lossguard/lossguard/internal/size"
)

// DefaultSizeThreshold is the accumulated size at which recursive deletions
// and truncations of unprotected paths become threats.
const DefaultSizeThreshold = 100 * 1024 * 1024

// escalationMarker prefixes the description of every threat found inside a
// privilege-escalated command.
const escalationMarker = "[privilege-escalated] "

// Analyzer runs the full detection pipeline over raw command lines. It is
// immutable after construction and safe for concurrent use as long as the
// registry and oracle it was built with are.
type Analyzer struct {
	detectors []detector
	piped     detector
	log       *log.Logger
}

// Options configures an Analyzer. Zero-value fields fall back to the
// defaults: a resolver for the current user, the built-in protected
// registry, the du-backed size oracle, and a discarded log.
type Options struct {
	Resolver      *normalize.Resolver
	Registry      *protect.Registry
	Oracle        size.Oracle
	SizeThreshold int64
	Logger        *log.Logger
}

func New(opts Options) *Analyzer {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = normalize.DefaultResolver()
	}
	registry := opts.Registry
	if registry == nil {
		registry = protect.New(resolver, protect.Options{})
	}
	oracle := opts.Oracle
	if oracle == nil {
		oracle = size.NewDiskUsage(size.DefaultTimeout)
	}
	threshold := opts.SizeThreshold
	if threshold <= 0 {
		threshold = DefaultSizeThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Analyzer{
		detectors: []detector{
			&deletionDetector{resolver: resolver, registry: registry, oracle: oracle, threshold: threshold},
			&findDeleteDetector{resolver: resolver, registry: registry, oracle: oracle, threshold: threshold},
			&permissionDetector{resolver: resolver, registry: registry},
			&gitCleanDetector{},
			&truncateDetector{resolver: resolver, registry: registry, oracle: oracle, threshold: threshold},
			&deviceWriteDetector{resolver: resolver},
		},
		piped: &pipeDeleteDetector{},
		log:   logger,
	}
}

// Analyze inspects one raw command line as typed, relative to cwd, and
// returns all detected threats sorted critical first. Threats of equal
// severity keep detection order. A nil or empty result means no detector
// objected; it never signals an internal failure.
func (a *Analyzer) Analyze(rawCommand, cwd string) []Threat {
	var threats []Threat

	// The pipe detector needs the line before splitting cuts it apart at
	// the very operator it keys on. Escalation still applies when the raw
	// line leads with an escalation prefix.
	_, rawEscalated := shell.StripEscalation(rawCommand)
	threats = append(threats, escalate(a.piped.Scan(rawCommand, cwd), rawEscalated)...)

	for _, sub := range shell.Split(rawCommand) {
		inner, escalated := shell.StripEscalation(sub)
		for _, det := range a.detectors {
			found := det.Scan(inner, cwd)
			if len(found) == 0 {
				continue
			}
			a.log.Debug("detector matched", "detector", det.Name(), "threats", len(found))
			threats = append(threats, escalate(found, escalated)...)
		}
	}

	sort.SliceStable(threats, func(i, j int) bool {
		return threats[i].Severity.rank() > threats[j].Severity.rank()
	})
	return threats
}

// escalate applies the privilege policy: anything dangerous enough to flag
// at all becomes critical when it would run with elevated privileges.
func escalate(threats []Threat, escalated bool) []Threat {
	if !escalated || len(threats) == 0 {
		return threats
	}
	out := make([]Threat, len(threats))
	for i, t := range threats {
		t.Severity = SeverityCritical
		t.Description = escalationMarker + t.Description
		out[i] = t
	}
	return out
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// removalCommands are the program names that delete their arguments.
var removalCommands = map[string]bool{
	"rm":     true,
	"rmdir":  true,
	"unlink": true,
}

// baseCommand reduces an invocation token to its command name, so /bin/rm
// and rm are treated alike.
func baseCommand(tok string) string {
	return filepath.Base(tok)
}
