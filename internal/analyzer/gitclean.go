package analyzer

import (
	"fmt"
	"strings"

	"github.com/lossguard/lossguard/internal/shell"
)

// gitCleanDetector inspects git clean invocations. Forced cleans that also
// reach untracked directories (-d) or ignored files (-x/-X) delete work that
// exists nowhere else, with no reflog to recover from.
type gitCleanDetector struct{}

func (d *gitCleanDetector) Name() string { return "git-clean" }

func (d *gitCleanDetector) Scan(text, cwd string) []Threat {
	tokens := shell.Words(text)
	if len(tokens) < 2 || baseCommand(tokens[0]) != "git" {
		return nil
	}

	// The subcommand is the first token that is not a flag. Flags taking a
	// separate value (-C <dir> and friends) defeat this and stay unflagged.
	sub := -1
	for i := 1; i < len(tokens); i++ {
		if !strings.HasPrefix(tokens[i], "-") {
			if tokens[i] == "clean" {
				sub = i
			}
			break
		}
	}
	if sub < 0 {
		return nil
	}

	force, dirs, ignored := false, false, false
	for _, tok := range tokens[sub+1:] {
		switch {
		case tok == "--force":
			force = true
		case strings.HasPrefix(tok, "--"):
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			for _, ch := range tok[1:] {
				switch ch {
				case 'f':
					force = true
				case 'd':
					dirs = true
				case 'x', 'X':
					ignored = true
				}
			}
		}
	}
	if !force || (!dirs && !ignored) {
		return nil
	}

	var categories []string
	if dirs {
		categories = append(categories, "untracked directories")
	}
	if ignored {
		categories = append(categories, "ignored files")
	}

	return []Threat{{
		Description: fmt.Sprintf("git clean -f permanently removes %s", strings.Join(categories, " and ")),
		Severity:    SeverityHigh,
	}}
}
