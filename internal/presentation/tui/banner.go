package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the PromptDrafter banner, shaded with the node colours.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` ___                    _   ___           __ _           `, "#4ade80"},
		{`| _ \_ _ ___ _ __  _ __| |_|   \ _ _ __ _ / _| |_ ___ _ _ `, "#86efac"},
		{`|  _/ '_/ _ \ '  \| '_ \  _| |) | '_/ _' |  _|  _/ -_) '_|`, "#c0c0c0"},
		{`|_| |_| \___/_|_|_| .__/\__|___/|_| \__,_|_|  \__\___|_|  `, "#c084fc"},
		{`                  |_|                                     `, "#a855f7"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
