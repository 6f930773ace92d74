package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tela banner to w, colored for the terminal's
// profile.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct{ text, color string }{
		{"  _       _       ", "#818cf8"},
		{" | |_ ___| | __ _ ", "#a78bfa"},
		{" | __/ _ \\ |/ _` |", "#c084fc"},
		{" | ||  __/ | (_| |", "#e879f9"},
		{"  \\__\\___|_|\\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
