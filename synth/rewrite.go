package synth

import "strings"

// CaptureFunction is the name of the template-defined function that records
// a line of output and still prints it to the host console.
const CaptureFunction = "__record_output"

// RewritePrintCalls rewrites every ambient print(...) call in the fragment
// to a CaptureFunction(...) call. Argument lists are matched with balanced
// parentheses, so nested calls such as print(foo(1, 2)) rewrite correctly.
// String literals, long strings and comments are never rewritten. A print
// with an unterminated argument list is left untouched for the compiler to
// diagnose.
func RewritePrintCalls(fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment))

	i := 0
	for i < len(fragment) {
		c := fragment[i]
		switch {
		case c == '-' && i+1 < len(fragment) && fragment[i+1] == '-':
			j := skipComment(fragment, i)
			b.WriteString(fragment[i:j])
			i = j
		case c == '"' || c == '\'':
			j := skipQuoted(fragment, i)
			b.WriteString(fragment[i:j])
			i = j
		case c == '[' && isLongBracketAt(fragment, i):
			j := skipLongBracket(fragment, i)
			b.WriteString(fragment[i:j])
			i = j
		case isIdentStart(c):
			j := i
			for j < len(fragment) && isIdentPart(fragment[j]) {
				j++
			}
			word := fragment[i:j]
			if word == "print" && !precededByAccessor(fragment, i) {
				if args, end, ok := printArguments(fragment, j); ok {
					b.WriteString(CaptureFunction)
					b.WriteByte('(')
					b.WriteString(RewritePrintCalls(args))
					b.WriteByte(')')
					i = end
					continue
				}
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// printArguments expects the opening parenthesis at or after start (skipping
// blanks) and scans to its balanced close. It returns the raw argument text
// and the index just past the closing parenthesis.
func printArguments(s string, start int) (args string, end int, ok bool) {
	i := start
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	if i >= len(s) || s[i] != '(' {
		return "", start, false
	}

	open := i
	depth := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			i = skipQuoted(s, i)
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			i = skipComment(s, i)
		case c == '[' && isLongBracketAt(s, i):
			i = skipLongBracket(s, i)
		case c == '(':
			depth++
			i++
		case c == ')':
			depth--
			i++
			if depth == 0 {
				return s[open+1 : i-1], i, true
			}
		default:
			i++
		}
	}
	return "", start, false
}

// precededByAccessor reports whether the identifier at i is a field or
// method name, allowing whitespace between the accessor and the name as Lua
// does.
func precededByAccessor(s string, i int) bool {
	for i > 0 && isBlank(s[i-1]) {
		i--
	}
	return i > 0 && (s[i-1] == '.' || s[i-1] == ':')
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// skipQuoted consumes a single- or double-quoted string starting at i,
// honoring backslash escapes. Unterminated strings run to the end.
func skipQuoted(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return len(s)
}

// skipComment consumes a -- comment starting at i, including long-bracket
// comments such as --[[ ... ]].
func skipComment(s string, i int) int {
	i += 2
	if i < len(s) && isLongBracketAt(s, i) {
		return skipLongBracket(s, i)
	}
	for i < len(s) && s[i] != '\n' {
		i++
	}
	return i
}

// isLongBracketAt reports whether a long-bracket opener ([[, [=[, ...)
// starts at i.
func isLongBracketAt(s string, i int) bool {
	if i >= len(s) || s[i] != '[' {
		return false
	}
	j := i + 1
	for j < len(s) && s[j] == '=' {
		j++
	}
	return j < len(s) && s[j] == '['
}

// skipLongBracket consumes a long-bracket string or comment body starting at
// the opener's first '['. Unterminated bodies run to the end.
func skipLongBracket(s string, i int) int {
	j := i + 1
	level := 0
	for j < len(s) && s[j] == '=' {
		level++
		j++
	}
	closing := "]" + strings.Repeat("=", level) + "]"
	idx := strings.Index(s[j+1:], closing)
	if idx < 0 {
		return len(s)
	}
	return j + 1 + idx + len(closing)
}
