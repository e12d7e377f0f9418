package analyzer

import (
	"fmt"
	"strings"

	"github.com/lossguard/lossguard/internal/normalize"
	"github.com/lossguard/lossguard/internal/shell"
)

// deviceWriteDetector inspects commands that bypass the filesystem and
// destroy data at the block or inode level: dd writing to a raw device,
// filesystem formatters, and mv into /dev/null.
type deviceWriteDetector struct {
	resolver *normalize.Resolver
}

func (d *deviceWriteDetector) Name() string { return "device-write" }

func (d *deviceWriteDetector) Scan(text, cwd string) []Threat {
	tokens := shell.Words(text)
	if len(tokens) == 0 {
		return nil
	}
	cmd := baseCommand(tokens[0])

	switch {
	case cmd == "dd":
		for _, tok := range tokens[1:] {
			target, ok := strings.CutPrefix(tok, "of=")
			if !ok {
				continue
			}
			if strings.HasPrefix(target, "/dev/") && target != "/dev/null" {
				return []Threat{{
					Description:   fmt.Sprintf("dd writes raw blocks over device %s", target),
					Severity:      SeverityCritical,
					AffectedPaths: []string{target},
				}}
			}
		}

	case cmd == "mkfs" || strings.HasPrefix(cmd, "mkfs."):
		target := ""
		for i := 1; i < len(tokens); i++ {
			if tokens[i] == "-t" {
				i++
				continue
			}
			if strings.HasPrefix(tokens[i], "-") {
				continue
			}
			target = tokens[i]
			break
		}
		t := Threat{Severity: SeverityCritical}
		if target != "" {
			t.Description = fmt.Sprintf("%s formats %s, destroying its contents", cmd, target)
			t.AffectedPaths = []string{target}
		} else {
			t.Description = fmt.Sprintf("%s formats a filesystem, destroying its contents", cmd)
		}
		return []Threat{t}

	case cmd == "mv":
		var args []string
		for _, tok := range tokens[1:] {
			if strings.HasPrefix(tok, "-") && len(tok) > 1 {
				continue
			}
			args = append(args, tok)
		}
		if len(args) < 2 || args[len(args)-1] != "/dev/null" {
			return nil
		}
		sources := make([]string, len(args)-1)
		for i, src := range args[:len(args)-1] {
			sources[i] = d.resolver.Resolve(src, cwd)
		}
		return []Threat{{
			Description:   fmt.Sprintf("mv into /dev/null discards %s", strings.Join(sources, ", ")),
			Severity:      SeverityHigh,
			AffectedPaths: sources,
		}}
	}

	return nil
}
