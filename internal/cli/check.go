package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lossguard/lossguard/internal/analyzer"
	"github.com/lossguard/lossguard/internal/approval"
	"github.com/lossguard/lossguard/internal/redact"
	"github.com/lossguard/lossguard/internal/render"
)

var (
	checkCwd   string
	checkJSON  bool
	checkAsk   bool
	checkQuiet bool
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] -- <command>...",
	Short: "Analyze one shell command for data-loss threats",
	Long: `Analyzes the given command string and reports every detected threat,
ordered critical-first. Exits 0 when the command is clean or approved,
non-zero when threats were found and not approved.

Examples:
  lossguard check -- rm -rf build
  lossguard check --cwd /srv/app --json -- "git clean -fdx"
  lossguard check --ask -- sudo rm -rf /var/cache`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkCwd, "cwd", "", "Working directory the command would run in (default: current)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Emit the report as JSON")
	checkCmd.Flags().BoolVar(&checkAsk, "ask", false, "Prompt for approval when threats are found")
	checkCmd.Flags().BoolVar(&checkQuiet, "quiet", false, "Suppress the report; the exit status carries the verdict")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")

	cwd := checkCwd
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
	}

	eng, err := newEngine("")
	if err != nil {
		return err
	}

	evalID := uuid.NewString()
	eng.log.Debug("analyzing command", "id", evalID, "command", redact.Redact(command), "cwd", cwd)

	threats := eng.analyzer.Analyze(command, cwd)

	if checkJSON {
		if err := render.JSON(cmd.OutOrStdout(), command, threats); err != nil {
			return err
		}
	} else if !checkQuiet {
		if len(threats) > 0 {
			render.Threats(cmd.OutOrStdout(), command, threats, eng.styles)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "no threats detected")
		}
	}

	if len(threats) == 0 {
		return nil
	}

	if checkAsk {
		decision := approval.Ask(command, threats)
		eng.log.Debug("approval decision", "id", evalID, "action", decision.Action)
		if decision.Approved {
			return nil
		}
	}

	return fmt.Errorf("command blocked: %s", joinDescriptions(threats))
}

// joinDescriptions flattens threats into the one-line reason surfaced on
// denial.
func joinDescriptions(threats []analyzer.Threat) string {
	parts := make([]string, len(threats))
	for i, t := range threats {
		parts[i] = t.Description
	}
	return strings.Join(parts, "; ")
}
