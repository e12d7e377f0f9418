package shell

import "strings"

// escalationCommands are the privilege-escalation wrappers recognized at the
// start of a subcommand. `su` is excluded: it takes the command as a quoted
// -c argument, so textual stripping would corrupt it.
var escalationCommands = map[string]bool{
	"sudo": true,
	"doas": true,
}

// StripEscalation removes a leading sudo/doas invocation together with its
// short flags (e.g. `sudo -E -n cmd`) and reports whether one was present.
// Text without an escalation prefix passes through unchanged. Value-taking
// options such as `-u user` are not understood; the user name then leads the
// inner text and simply matches no detector.
func StripEscalation(text string) (inner string, escalated bool) {
	word, rest := firstWord(strings.TrimSpace(text))
	if !escalationCommands[word] {
		return text, false
	}

	for {
		w, r := firstWord(rest)
		if w == "--" {
			rest = r
			break
		}
		if w == "" || w == "-" || !strings.HasPrefix(w, "-") {
			break
		}
		rest = r
	}

	return rest, true
}

// firstWord splits off the leading whitespace-delimited word.
func firstWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
