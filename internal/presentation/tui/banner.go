package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{"   __                                            _     ", "#818cf8"},
	{"  / _|_ __ __ _ _ __ ___   ___  __ _ _ __ __ _ _ __ | |__  ", "#a78bfa"},
	{" | |_| '__/ _` | '_ ` _ \\ / _ \\/ _` | '__/ _` | '_ \\| '_ \\ ", "#c084fc"},
	{" |  _| | | (_| | | | | | |  __/ (_| | | | (_| | |_) | | | |", "#e879f9"},
	{" |_| |_|  \\__,_|_| |_| |_|\\___|\\__, |_|  \\__,_| .__/|_| |_|", "#f472b6"},
	{"                                |___/          |_|          ", "#fb7185"},
}

// PrintBanner writes the framegraph banner to w, colored according to p.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  coordinate frame graph "+version).Faint())
	fmt.Fprintln(w)
}
