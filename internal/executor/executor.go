// Package executor provides shell command execution for nosh.
// It wraps mvdan/sh for POSIX command execution, managing environment
// variables and working directory state. Prompt variable providers run
// their command lines through subshells so they cannot disturb the
// interactive session.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// threadSafeBuffer provides a thread-safe wrapper around bytes.Buffer
type threadSafeBuffer struct {
	buffer bytes.Buffer
	mutex  sync.Mutex
}

// Write implements io.Writer interface
func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.Write(p)
}

// String returns the contents of the buffer as a string
func (b *threadSafeBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.String()
}

// ExecMiddleware is a function that wraps an ExecHandlerFunc to provide
// additional functionality (e.g., command interception, logging).
type ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

// Executor runs shell commands for the REPL and for prompt variable
// providers using mvdan/sh.
type Executor struct {
	runner    *interp.Runner
	logger    *zap.Logger
	varsMutex sync.RWMutex // Protects concurrent access to runner.Vars
}

// New creates a new Executor.
// The logger is optional (can be nil).
// The execHandlers are optional middleware for intercepting command execution.
func New(logger *zap.Logger, execHandlers ...ExecMiddleware) (*Executor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	env := expand.ListEnviron(os.Environ()...)

	runner, err := interp.New(
		interp.Interactive(true),
		interp.Env(env),
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
		interp.ExecHandlers(execHandlers...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create shell runner: %w", err)
	}

	return &Executor{
		runner: runner,
		logger: logger,
	}, nil
}

// Run runs a shell command with output going to stdout/stderr.
// Returns the exit code and any execution error.
func (e *Executor) Run(ctx context.Context, command string) (int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return 1, fmt.Errorf("failed to parse command: %w", err)
	}

	err = e.runner.Run(ctx, prog)
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return int(exitStatus), nil
		}
		return 1, err
	}

	return 0, nil
}

// RunInSubshell runs a shell command in a subshell, capturing output.
// Returns stdout, stderr, exit code, and any execution error.
// A non-zero exit code is not an execution error.
func (e *Executor) RunInSubshell(ctx context.Context, command string) (string, string, int, error) {
	subShell := e.runner.Subshell()

	outBuf := &threadSafeBuffer{}
	errBuf := &threadSafeBuffer{}
	interp.StdIO(nil, io.Writer(outBuf), io.Writer(errBuf))(subShell) //nolint:errcheck

	var prog *syntax.Stmt
	err := syntax.NewParser().Stmts(strings.NewReader(command), func(stmt *syntax.Stmt) bool {
		prog = stmt
		return false
	})
	if err != nil {
		return "", "", 1, fmt.Errorf("failed to parse command: %w", err)
	}

	if prog == nil {
		return "", "", 0, nil
	}

	err = subShell.Run(ctx, prog)

	exitCode := 0
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return outBuf.String(), errBuf.String(), int(exitStatus), nil
		}
		return outBuf.String(), errBuf.String(), 1, err
	}

	return outBuf.String(), errBuf.String(), exitCode, nil
}

// GetEnv gets an environment variable value.
// This reads from the runner's Vars map, which is populated during command execution.
func (e *Executor) GetEnv(name string) string {
	e.varsMutex.RLock()
	defer e.varsMutex.RUnlock()
	if e.runner.Vars == nil {
		return ""
	}
	return e.runner.Vars[name].String()
}

// SetEnv sets an environment variable directly in the runner's Vars map.
func (e *Executor) SetEnv(name, value string) {
	e.varsMutex.Lock()
	defer e.varsMutex.Unlock()
	if e.runner.Vars == nil {
		e.runner.Vars = make(map[string]expand.Variable)
	}
	e.runner.Vars[name] = expand.Variable{
		Exported: true,
		Kind:     expand.String,
		Str:      value,
	}
}

// Pwd returns the current working directory of the shell.
func (e *Executor) Pwd() string {
	return e.runner.Dir
}

// Runner returns the underlying mvdan/sh runner.
// This is useful for advanced use cases that need direct access.
func (e *Executor) Runner() *interp.Runner {
	return e.runner
}

// RunScriptFromReader runs a shell script from an io.Reader.
func (e *Executor) RunScriptFromReader(ctx context.Context, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return e.runner.Run(ctx, prog)
}
