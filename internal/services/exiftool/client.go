// Package exiftool wraps the exiftool CLI. Reads go through JSON output
// only; writes go through argfiles so one invocation covers a whole batch.
package exiftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound indicates the exiftool binary is not installed.
var ErrNotFound = errors.New("exiftool not found; install it from https://exiftool.org/")

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps exiftool CLI interactions.
type Client struct {
	binary       string
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
	exec         Executor
}

// New constructs an exiftool client.
func New(binary string, readTimeoutSeconds, writeTimeoutSeconds int, logger *slog.Logger, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("exiftool binary required")
	}
	client := &Client{
		binary:       binary,
		readTimeout:  time.Duration(readTimeoutSeconds) * time.Second,
		writeTimeout: time.Duration(writeTimeoutSeconds) * time.Second,
		logger:       logger,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// exiftool exits nonzero for recoverable conditions (no files
			// matched, some files skipped); callers inspect the output.
			return stdout.Bytes(), stderr.Bytes(), nil
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("run %s: %w", binary, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func (c *Client) logStderr(stderr []byte) {
	for _, line := range strings.Split(string(stderr), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			c.logger.Debug("exiftool stderr", slog.String("line", line))
		}
	}
}
