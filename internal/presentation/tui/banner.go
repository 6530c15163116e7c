package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the formwizard banner followed by the wizard title.
func PrintBanner(w io.Writer, profile termenv.Profile, title string) {
	lines := []struct {
		text, color string
	}{
		{"   __                        _                  _ ", "#818cf8"},
		{"  / _|___ _ _ _ __ __ __ _(_)_____ _ _ _ __| |", "#a78bfa"},
		{" |  _/ _ \\ '_| '  \\\\ V  V / |_ / _` | '_/ _` |", "#c084fc"},
		{" |_| \\___/_| |_|_|_|\\_/\\_/|_/__\\__,_|_| \\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, profile.String(l.text).Foreground(profile.Color(l.color)))
	}
	if title != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, profile.String("  "+title).Bold())
	}
	fmt.Fprintln(w)
}
