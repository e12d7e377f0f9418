package analyzer

import (
	"fmt"

	"github.com/lossguard/lossguard/internal/shell"
)

// pipeDeleteDetector inspects whole command lines for pipelines that feed
// file listings into a bulk remover, the `ls | xargs rm` family. It is the
// one detector that runs before subcommand splitting, since the pipe
// operator it keys on is itself a split boundary.
type pipeDeleteDetector struct{}

func (d *pipeDeleteDetector) Name() string { return "piped-deletion" }

func (d *pipeDeleteDetector) Scan(raw, cwd string) []Threat {
	segments, ops := shell.SplitOperators(raw)

	var threats []Threat
	for i, op := range ops {
		if op != "|" {
			continue
		}
		// Escalation wrappers around either stage are not the command.
		consumer, _ := shell.StripEscalation(segments[i+1])
		tokens := shell.Words(consumer)
		if len(tokens) == 0 || baseCommand(tokens[0]) != "xargs" {
			continue
		}
		remover := ""
		for _, tok := range tokens[1:] {
			if removalCommands[baseCommand(tok)] {
				remover = baseCommand(tok)
				break
			}
		}
		if remover == "" {
			continue
		}

		producer := "pipeline"
		pseg, _ := shell.StripEscalation(segments[i])
		if ptoks := shell.Words(pseg); len(ptoks) > 0 {
			producer = baseCommand(ptoks[0])
		}
		threats = append(threats, Threat{
			Description: fmt.Sprintf("piped deletion: %s output is forwarded to xargs %s", producer, remover),
			Severity:    SeverityHigh,
		})
	}
	return threats
}
