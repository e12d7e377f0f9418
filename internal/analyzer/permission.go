package analyzer

import (
	"fmt"
	"strings"

	"github.com/lossguard/lossguard/internal/normalize"
	"github.com/lossguard/lossguard/internal/protect"
	"github.com/lossguard/lossguard/internal/shell"
)

// permissionDetector inspects recursive chmod/chown invocations against
// protected paths. A recursive ownership or mode sweep over a system tree
// can render it unusable even though nothing is deleted. Non-recursive
// invocations never flag.
type permissionDetector struct {
	resolver *normalize.Resolver
	registry *protect.Registry
}

func (d *permissionDetector) Name() string { return "recursive-permission" }

func (d *permissionDetector) Scan(text, cwd string) []Threat {
	tokens := shell.Words(text)
	if len(tokens) == 0 {
		return nil
	}
	cmd := baseCommand(tokens[0])
	if cmd != "chmod" && cmd != "chown" {
		return nil
	}

	recursive := false
	var args []string
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "-") && len(tok) > 1 {
			if tok == "--recursive" {
				recursive = true
			} else if !strings.HasPrefix(tok, "--") && strings.ContainsRune(tok, 'R') {
				recursive = true
			}
			continue
		}
		args = append(args, tok)
	}

	// args[0] is the mode or owner spec; everything after it is a target.
	if !recursive || len(args) < 2 {
		return nil
	}

	var threats []Threat
	for _, target := range args[1:] {
		if !d.registry.IsProtected(target, cwd) {
			continue
		}
		resolved := d.resolver.Resolve(target, cwd)
		threats = append(threats, Threat{
			Description:   fmt.Sprintf("recursive %s on protected path %s", cmd, resolved),
			Severity:      SeverityCritical,
			AffectedPaths: []string{resolved},
		})
	}
	return threats
}
