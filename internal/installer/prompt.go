package installer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Confirm prints question followed by a "(yes/no):" prompt on w and reads one
// line from r. Only "yes" or "y" (any case, surrounding spaces ignored)
// count as confirmation; anything else, including end of input, does not.
func Confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	color.New(color.FgGreen, color.Bold).Fprintln(w, question)
	color.New(color.FgYellow, color.Bold).Fprint(w, "(yes/no): ")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}
