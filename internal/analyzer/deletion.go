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

// deletionDetector inspects rm invocations. Each target is checked in a
// fixed order, wildcard shape first, then protected-path membership, then
// accumulated size, and produces at most one threat.
type deletionDetector struct {
	resolver  *normalize.Resolver
	registry  *protect.Registry
	oracle    size.Oracle
	threshold int64
}

func (d *deletionDetector) Name() string { return "deletion" }

func (d *deletionDetector) Scan(text, cwd string) []Threat {
	tokens := shell.Words(text)
	if len(tokens) == 0 || baseCommand(tokens[0]) != "rm" {
		return nil
	}

	recursive := false
	terminated := false
	var targets []string
	for _, tok := range tokens[1:] {
		if !terminated {
			if tok == "--" {
				terminated = true
				continue
			}
			if strings.HasPrefix(tok, "--") {
				if tok == "--recursive" {
					recursive = true
				}
				continue
			}
			if strings.HasPrefix(tok, "-") && len(tok) > 1 {
				if strings.ContainsAny(tok[1:], "rR") {
					recursive = true
				}
				continue
			}
		}
		targets = append(targets, tok)
	}

	var threats []Threat
	for _, target := range targets {
		if t, ok := d.checkTarget(target, cwd, recursive); ok {
			threats = append(threats, t)
		}
	}
	return threats
}

func (d *deletionDetector) checkTarget(target, cwd string, recursive bool) (Threat, bool) {
	resolved := d.resolver.Resolve(target, cwd)

	if isWildcardExplosion(target) {
		return Threat{
			Description:   fmt.Sprintf("wildcard deletion: %s expands across an entire directory level", target),
			Severity:      SeverityCritical,
			AffectedPaths: []string{resolved},
		}, true
	}

	if d.registry.IsProtected(target, cwd) {
		return Threat{
			Description:   fmt.Sprintf("deletion targets protected path %s", resolved),
			Severity:      SeverityCritical,
			AffectedPaths: []string{resolved},
		}, true
	}

	if recursive {
		if sz := d.oracle.SizeOf(resolved); sz >= d.threshold {
			return Threat{
				Description:   fmt.Sprintf("recursive deletion of %s would erase %s", resolved, humanize.IBytes(uint64(sz))),
				Severity:      SeverityHigh,
				AffectedPaths: []string{resolved},
			}, true
		}
	}

	return Threat{}, false
}

const globChars = "*?["

// isWildcardExplosion reports whether a deletion target is a glob broad
// enough to empty a whole directory level: a glob anchored at the root or
// the home directory, or one starting a path component at most one level
// deep. Partial-name globs such as tmp* do not count, and neither do globs
// buried deeper than one directory.
func isWildcardExplosion(target string) bool {
	t := target
	for _, anchor := range []string{"~/", "$HOME/", "${HOME}/"} {
		if strings.HasPrefix(t, anchor) {
			t = t[len(anchor):]
			break
		}
	}
	t = strings.TrimPrefix(t, "./")
	t = strings.TrimPrefix(t, "/")

	levels := 0
	for i := 0; i < len(t); i++ {
		if strings.ContainsRune(globChars, rune(t[i])) && (i == 0 || t[i-1] == '/') {
			return levels <= 1
		}
		if t[i] == '/' {
			levels++
		}
	}
	return false
}
