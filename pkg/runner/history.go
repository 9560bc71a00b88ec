package runner

import (
	"fmt"
	"strings"
)

// HistoryMarkdown renders history lines ("a op b = r") as a markdown table.
func HistoryMarkdown(lines []string) string {
	var b strings.Builder
	b.WriteString("| # | Expression | Result |\n|---:|:---|---:|\n")
	for i, line := range lines {
		expr, result := line, ""
		if idx := strings.LastIndex(line, " = "); idx >= 0 {
			expr, result = line[:idx], line[idx+3:]
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, escapeCell(expr), escapeCell(result))
	}
	return b.String()
}

// escapeCell keeps operators from being read as markdown emphasis.
func escapeCell(s string) string {
	return strings.NewReplacer("*", `\*`, "|", `\|`).Replace(s)
}
