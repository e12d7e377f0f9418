// Package shell provides the lightweight command-line surgery the detectors
// build on: splitting compound commands at top-level operators, stripping
// privilege-escalation prefixes, and quote-respecting tokenization. It is
// deliberately not a shell grammar — subshells, `$( )`, and here-docs pass
// through untouched.
package shell

import "strings"

// Split cuts a raw command line into subcommands at top-level `;`, `|`, `&&`,
// and `||` boundaries. Separators inside single or double quotes, or escaped
// with a backslash, are copied verbatim. Blank segments are dropped.
func Split(raw string) []string {
	segments, _ := SplitOperators(raw)
	return segments
}

// SplitOperators is Split plus the operator found between each pair of
// adjacent segments: ops[i] separates segments[i] from segments[i+1]. Blank
// segments are dropped along with their trailing operator so the slices stay
// aligned.
func SplitOperators(raw string) (segments []string, ops []string) {
	var cur strings.Builder
	inSingle, inDouble := false, false

	flush := func(op string) {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text == "" {
			return
		}
		segments = append(segments, text)
		if op != "" {
			ops = append(ops, op)
		}
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case ch == '\\' && !inSingle && i+1 < len(raw):
			cur.WriteByte(ch)
			i++
			cur.WriteByte(raw[i])
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteByte(ch)
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteByte(ch)
		case inSingle || inDouble:
			cur.WriteByte(ch)
		case ch == ';':
			flush(";")
		case ch == '&' && i+1 < len(raw) && raw[i+1] == '&':
			flush("&&")
			i++
		case ch == '|':
			if i+1 < len(raw) && raw[i+1] == '|' {
				flush("||")
				i++
			} else {
				flush("|")
			}
		default:
			cur.WriteByte(ch)
		}
	}
	flush("")

	// An operator recorded after the last surviving segment separates nothing.
	if len(segments) == 0 {
		return nil, nil
	}
	if len(ops) >= len(segments) {
		ops = ops[:len(segments)-1]
	}
	if len(ops) == 0 {
		ops = nil
	}

	return segments, ops
}
