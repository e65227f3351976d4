package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the polyglot banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                 _       _       _   ", "#34d399"},
		{"  _ __  ___  ___| |_   _| | ___ | |_ ", "#2dd4bf"},
		{" | '_ \\/ _ \\/ _ \\ | | | | |/ _ \\| __|", "#22d3ee"},
		{" | |_) | (_) (_) | | |_| | | (_) | |_ ", "#38bdf8"},
		{" | .__/ \\___/\\___/|_|\\__, |_|\\___/ \\__|", "#60a5fa"},
		{" |_|                 |___/            ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  version "+v).Faint())
	}
	fmt.Fprintln(w)
}
