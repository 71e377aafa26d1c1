// Package media resolves video metadata and downloads audio through the
// external yt-dlp and ffmpeg binaries.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts subprocess execution so tests can stub the
// external binaries.
type CommandRunner interface {
	// Run executes the named binary with args and returns trimmed stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and returns its stdout with surrounding
// whitespace trimmed. On failure the error includes captured stderr,
// which is where yt-dlp and ffmpeg report diagnostics.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(out.String()), nil
}
