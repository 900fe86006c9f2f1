// Package fpcalc wraps the Chromaprint fpcalc binary, producing the
// compressed fingerprints the AcoustID lookup service consumes.
package fpcalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Fingerprint holds the fpcalc output for one audio file.
type Fingerprint struct {
	DurationSeconds float64 `json:"duration"`
	Fingerprint     string  `json:"fingerprint"`
}

// Executor abstracts command execution so tests can substitute fakes.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Client runs fpcalc against audio files.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// Option customizes client construction.
type Option func(*Client)

// WithExecutor overrides the default command executor.
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// New creates an fpcalc client. timeoutSeconds bounds each invocation; zero
// disables the bound.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("fpcalc binary path required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	if timeoutSeconds > 0 {
		client.timeout = time.Duration(timeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Calculate fingerprints the audio file at path.
func (c *Client) Calculate(ctx context.Context, path string) (*Fingerprint, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("audio path must not be empty")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	output, err := c.exec.Output(ctx, c.binary, []string{"-json", path})
	if err != nil {
		return nil, fmt.Errorf("fpcalc: %w", err)
	}

	var payload Fingerprint
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("parse fpcalc output: %w", err)
	}
	if strings.TrimSpace(payload.Fingerprint) == "" {
		return nil, errors.New("fpcalc produced no fingerprint")
	}
	return &payload, nil
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}
