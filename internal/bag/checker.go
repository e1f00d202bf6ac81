// Package bag wraps the external packaging-format conformance checker.
//
// Checksum and manifest verification is the checker's job, not gatekeeper's:
// the validator only consumes the result. The default adapter shells out to a
// bagit-style CLI; its stderr carries the manifest entries or checksums that
// disagreed, which is surfaced verbatim in the structural conformance error.
package bag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"gatekeeper/internal/services"
)

var commandContext = exec.CommandContext

// Checker verifies a bag directory's manifests and checksums.
type Checker interface {
	Check(ctx context.Context, bagPath string) error
}

// Option configures the CLI checker.
type Option func(*CLI)

// WithCommand overrides the checker command and its leading arguments.
func WithCommand(command string, args ...string) Option {
	return func(c *CLI) {
		if command != "" {
			c.command = command
			c.args = args
		}
	}
}

// WithTimeout bounds a single checker invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI invokes an external bagit-style validator against a directory.
type CLI struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCLI constructs a CLI checker using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{command: "bagit.py", args: []string{"--validate"}, timeout: 30 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Check runs the checker against bagPath. A non-zero exit is a structural
// conformance failure carrying the checker's diagnostics; any other execution
// problem is a transient error.
func (c *CLI) Check(ctx context.Context, bagPath string) error {
	if bagPath == "" {
		return errors.New("bag path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.args...), bagPath)
	cmd := commandContext(runCtx, c.command, args...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()
	if runCtx.Err() != nil {
		return services.Wrap(services.ErrTransient, "structure_checking", "run checker",
			fmt.Sprintf("bag checker timed out on %s", bagPath), nil)
	}
	if runErr == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return services.Wrap(services.ErrStructural, "structure_checking", "validate bag",
			strings.TrimSpace(output.String()), nil)
	}
	return services.Wrap(services.ErrTransient, "structure_checking", "run checker",
		"cannot execute bag checker", runErr)
}

var _ Checker = (*CLI)(nil)
