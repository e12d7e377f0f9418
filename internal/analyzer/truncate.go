package analyzer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lossguard/lossguard/internal/normalize"
	"github.com/lossguard/lossguard/internal/protect"
	"github.com/lossguard/lossguard/internal/shell"
	"github.com/lossguard/lossguard/internal/size"
)

// truncateDetector covers the two ways a command empties a file in place: a
// bare output redirection leading the command, and the truncate utility.
// Leading redirections are checked against the protected registry only;
// truncate targets are checked against the size threshold only.
type truncateDetector struct {
	resolver  *normalize.Resolver
	registry  *protect.Registry
	oracle    size.Oracle
	threshold int64
}

func (d *truncateDetector) Name() string { return "truncation" }

func (d *truncateDetector) Scan(text, cwd string) []Threat {
	trimmed := strings.TrimSpace(text)

	// `> file` clobbers before anything runs. Appends (>>) and redirections
	// later in the command are legitimate output plumbing and stay silent.
	if strings.HasPrefix(trimmed, ">") && !strings.HasPrefix(trimmed, ">>") {
		rest := strings.TrimPrefix(trimmed, ">")
		rest = strings.TrimPrefix(rest, "|")
		tokens := shell.Words(rest)
		if len(tokens) == 0 {
			return nil
		}
		target := tokens[0]
		if !d.registry.IsProtected(target, cwd) {
			return nil
		}
		resolved := d.resolver.Resolve(target, cwd)
		return []Threat{{
			Description:   fmt.Sprintf("redirection truncates protected file %s", resolved),
			Severity:      SeverityCritical,
			AffectedPaths: []string{resolved},
		}}
	}

	tokens := shell.Words(trimmed)
	if len(tokens) == 0 || baseCommand(tokens[0]) != "truncate" {
		return nil
	}

	var targets []string
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "-s" || tok == "--size":
			i++
		case strings.HasPrefix(tok, "--size="):
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
		default:
			targets = append(targets, tok)
		}
	}

	var threats []Threat
	for _, target := range targets {
		resolved := d.resolver.Resolve(target, cwd)
		sz := d.oracle.SizeOf(resolved)
		if sz < d.threshold {
			continue
		}
		threats = append(threats, Threat{
			Description:   fmt.Sprintf("truncate discards %s held in %s", humanize.IBytes(uint64(sz)), resolved),
			Severity:      SeverityHigh,
			AffectedPaths: []string{resolved},
		})
	}
	return threats
}
