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

// findDeleteDetector inspects find invocations that delete what they match,
// either through -delete or through an -exec/-execdir clause spawning a
// removal command. The traversal root decides the blast radius: protected
// roots are critical, large roots are high, everything else passes.
type findDeleteDetector struct {
	resolver  *normalize.Resolver
	registry  *protect.Registry
	oracle    size.Oracle
	threshold int64
}

func (d *findDeleteDetector) Name() string { return "find-delete" }

func (d *findDeleteDetector) Scan(text, cwd string) []Threat {
	tokens := shell.Words(text)
	if len(tokens) == 0 || baseCommand(tokens[0]) != "find" {
		return nil
	}

	deletes := false
	for i := 1; i < len(tokens); i++ {
		switch tokens[i] {
		case "-delete":
			deletes = true
		case "-exec", "-execdir":
			if i+1 < len(tokens) && removalCommands[baseCommand(tokens[i+1])] {
				deletes = true
			}
		}
	}
	if !deletes {
		return nil
	}

	root := findTraversalRoot(tokens[1:])
	resolved := d.resolver.Resolve(root, cwd)

	if d.registry.IsProtected(root, cwd) {
		return []Threat{{
			Description:   fmt.Sprintf("find with deletion rooted at protected path %s", resolved),
			Severity:      SeverityCritical,
			AffectedPaths: []string{resolved},
		}}
	}

	if sz := d.oracle.SizeOf(resolved); sz >= d.threshold {
		return []Threat{{
			Description:   fmt.Sprintf("find with deletion sweeps %s under %s", humanize.IBytes(uint64(sz)), resolved),
			Severity:      SeverityHigh,
			AffectedPaths: []string{resolved},
		}}
	}

	return nil
}

// findTraversalRoot extracts the first starting point of a find invocation,
// skipping the symlink and debug pre-options that may precede it. find
// defaults to the current directory when no starting point is given.
func findTraversalRoot(args []string) string {
	i := 0
	for i < len(args) {
		tok := args[i]
		switch {
		case tok == "-H" || tok == "-L" || tok == "-P":
			i++
		case tok == "-D":
			i += 2
		case strings.HasPrefix(tok, "-O"):
			i++
		default:
			if strings.HasPrefix(tok, "-") || tok == "(" || tok == "!" {
				return "."
			}
			return tok
		}
	}
	return "."
}
