package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"        _                          ", "#818cf8"},
	{"   __ _| |__   __ _  ___ _   _ ___ ", "#a78bfa"},
	{"  / _` | '_ \\ / _` |/ __| | | / __|", "#c084fc"},
	{" | (_| | |_) | (_| | (__| |_| \\__ \\", "#e879f9"},
	{"  \\__,_|_.__/ \\__,_|\\___|\\__,_|___/", "#f472b6"},
}

// PrintBanner writes the Abacus ASCII banner and version line to w.
// Colors follow the color profile detected for w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w, out.String("  calculator engine "+version+"  (type help)").Faint())
	fmt.Fprintln(w)
}
