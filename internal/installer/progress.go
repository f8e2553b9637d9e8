package installer

import (
	"fmt"
	"io"
	"strings"
)

const barWidth = 30

// NewProgressBar returns a ProgressFunc drawing "[=====     ]  42%" on w.
// It redraws only when the percentage changes. Without a known total it
// prints the received byte count instead, until the final call with
// total == received completes the bar and ends the line.
func NewProgressBar(w io.Writer) ProgressFunc {
	lastPercent := -1
	return func(received, total int64) {
		if total <= 0 {
			fmt.Fprintf(w, "\r%d bytes", received)
			return
		}

		percent := int(received * 100 / total)
		if percent > 100 {
			percent = 100
		}
		if percent == lastPercent {
			return
		}
		lastPercent = percent

		filled := percent * barWidth / 100
		bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
		fmt.Fprintf(w, "\r[%s]  %3d%%", bar, percent)
		if percent == 100 {
			fmt.Fprintln(w)
		}
	}
}
