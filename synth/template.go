package synth

import (
	"fmt"
	"strings"
)

// Field names the synthesized unit exposes as script globals.
const (
	FieldResult       = "result"
	FieldOutputLines  = "output_lines"
	FieldErrorMessage = "error_message"
)

// unitTemplate is the fixed shell every fragment is embedded into. It
// declares the result slot, the capture function that records a line and
// still prints it, the fragment body and the init entry point that runs the
// body under pcall, recording failure into error_message.
const unitTemplate = `result = nil
output_lines = {}
error_message = ""

local __host_print = print

function __record_output(...)
	local parts = {}
	for i = 1, select("#", ...) do
		parts[i] = tostring(select(i, ...))
	end
	local line = table.concat(parts, "\t")
	output_lines[#output_lines + 1] = line
	__host_print(line)
end

local function __unit_body()
%s
end

function init()
	local ok, err = pcall(__unit_body)
	if not ok then
		error_message = tostring(err)
	end
end
`

// AssembleUnit embeds an already-rewritten, already-normalized fragment into
// the unit template, re-indented by one level.
func AssembleUnit(fragment string) string {
	return fmt.Sprintf(unitTemplate, indentOneLevel(fragment))
}

// Synthesize produces a complete runnable unit from a raw code fragment.
func Synthesize(fragment string) string {
	return AssembleUnit(NormalizeIndentation(RewritePrintCalls(fragment)))
}

func indentOneLevel(fragment string) string {
	lines := strings.Split(fragment, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "\t" + line
		}
	}
	return strings.Join(lines, "\n")
}
