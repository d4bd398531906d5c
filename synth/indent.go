package synth

import "strings"

// spacesPerTab is the ratio at which leading spaces map to one tab.
const spacesPerTab = 4

// NormalizeIndentation converts runs of four leading spaces to tabs, line by
// line. Tabs already present pass through and shorter space runs are kept,
// which makes the pass idempotent. Text after the first non-blank character
// is never touched.
func NormalizeIndentation(fragment string) string {
	lines := strings.Split(fragment, "\n")
	for i, line := range lines {
		lines[i] = normalizeLine(line)
	}
	return strings.Join(lines, "\n")
}

func normalizeLine(line string) string {
	end := 0
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	if end == 0 {
		return line
	}

	var b strings.Builder
	run := 0
	for i := 0; i < end; i++ {
		if line[i] == ' ' {
			run++
			if run == spacesPerTab {
				b.WriteByte('\t')
				run = 0
			}
			continue
		}
		// A tab terminates the current space run without rounding it up.
		b.WriteString(strings.Repeat(" ", run))
		run = 0
		b.WriteByte('\t')
	}
	b.WriteString(strings.Repeat(" ", run))
	b.WriteString(line[end:])
	return b.String()
}
