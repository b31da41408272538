package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the fangraph banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Cool to hot, like the curves it drives
	lines := []struct{ text, color string }{
		{"   __                                  _     ", "#38bdf8"},
		{"  / _| __ _ _ __   __ _ _ __ __ _ _ __ | |__  ", "#818cf8"},
		{" | |_ / _` | '_ \\ / _` | '__/ _` | '_ \\| '_ \\ ", "#c084fc"},
		{" |  _| (_| | | | | (_| | | | (_| | |_) | | | |", "#f472b6"},
		{" |_|  \\__,_|_| |_|\\__, |_|  \\__,_| .__/|_| |_|", "#fb7185"},
		{"                  |___/          |_|          ", "#f97316"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}
