package shell

import (
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Words tokenizes one subcommand, honoring single/double quotes and
// backslash escapes, so `rm "file with spaces.txt"` yields two tokens. Input
// the parser rejects (e.g. an unterminated quote) falls back to whitespace
// splitting rather than failing.
func Words(text string) []string {
	parser := shellwords.NewParser()
	tokens, err := parser.Parse(text)
	if err != nil {
		return strings.Fields(text)
	}
	return tokens
}
