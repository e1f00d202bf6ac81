package mediaconch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Detection selects how pass/fail is read from the tool.
type Detection int

const (
	// DetectStdout classifies by the leading pass!/fail! token on stdout.
	DetectStdout Detection = iota
	// DetectExitCode classifies by the process exit code.
	DetectExitCode
)

// Verdict is the classification of one file check.
type Verdict struct {
	Pass bool
	// Diagnostic carries the tool's output verbatim when the file fails.
	Diagnostic string
}

// Runner defines the conformance check behaviour the validator depends on.
type Runner interface {
	Check(ctx context.Context, policyPath, filePath string) (Verdict, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithDetection selects the pass/fail detection strategy.
func WithDetection(detection Detection) Option {
	return func(c *CLI) {
		c.detection = detection
	}
}

// WithTimeout bounds a single tool invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the mediaconch command-line tool.
type CLI struct {
	binary    string
	detection Detection
	timeout   time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "mediaconch", detection: DetectStdout, timeout: 10 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Check runs the tool against one file using the given policy document and
// classifies the result. An error return means the tool itself could not be
// run or produced unclassifiable output, not that the file is non-conformant.
func (c *CLI) Check(ctx context.Context, policyPath, filePath string) (Verdict, error) {
	if policyPath == "" {
		return Verdict{}, errors.New("policy path required")
	}
	if filePath == "" {
		return Verdict{}, errors.New("file path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := commandContext(runCtx, c.binary, "-p", policyPath, "-fs", filePath) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	runErr := cmd.Run()

	if runCtx.Err() != nil {
		return Verdict{}, fmt.Errorf("conformance tool timed out checking %s", filePath)
	}

	switch c.detection {
	case DetectExitCode:
		return c.classifyExitCode(runErr, output.String())
	default:
		return c.classifyStdout(runErr, output.String())
	}
}

func (c *CLI) classifyStdout(runErr error, output string) (Verdict, error) {
	trimmed := strings.TrimSpace(output)
	switch {
	case strings.HasPrefix(trimmed, "pass!"):
		return Verdict{Pass: true}, nil
	case strings.HasPrefix(trimmed, "fail!"):
		return Verdict{Pass: false, Diagnostic: trimmed}, nil
	}
	if runErr != nil {
		return Verdict{}, fmt.Errorf("run %s: %w: %s", c.binary, runErr, trimmed)
	}
	return Verdict{}, fmt.Errorf("unrecognized %s output: %s", c.binary, trimmed)
}

func (c *CLI) classifyExitCode(runErr error, output string) (Verdict, error) {
	if runErr == nil {
		return Verdict{Pass: true}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return Verdict{Pass: false, Diagnostic: strings.TrimSpace(output)}, nil
	}
	return Verdict{}, fmt.Errorf("run %s: %w", c.binary, runErr)
}

var _ Runner = (*CLI)(nil)
