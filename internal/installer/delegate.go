package installer

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"libsync/internal/logger"
)

// PackageManager runs an external package manager's update command.
type PackageManager interface {
	Run(ctx context.Context, dir string, command []string) error
}

// ExecPackageManager runs the command as a child process, streaming its
// stdout through unchanged and its stderr in bold red.
type ExecPackageManager struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes command in dir. The child's exit status is returned as is;
// a non-zero exit surfaces as an *exec.ExitError.
func (p ExecPackageManager) Run(ctx context.Context, dir string, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty package manager command")
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = p.Stdout
	cmd.Stderr = &colorWriter{w: p.Stderr, c: color.New(color.FgRed, color.Bold)}

	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(command, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.Join(command, " "), err)
	}
	return nil
}

// colorWriter re-prints everything written to it in color c.
type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
