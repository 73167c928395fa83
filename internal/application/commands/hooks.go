package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// runHooks executes configured shell commands in order, stopping at the first
// failure. Hooks run with the canonical root as working directory.
func runHooks(ctx context.Context, dir string, cmds []string) error {
	for _, line := range cmds {
		cmd := exec.CommandContext(ctx, "sh", "-c", line)
		cmd.Dir = dir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("hook %q: %w", line, err)
		}
	}
	return nil
}
