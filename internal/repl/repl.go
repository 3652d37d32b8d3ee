// Package repl drives the interactive shell loop: it renders the prompt
// once per draw from resolved plugin variables, runs foreground commands
// through the shell executor, and reports their durations back to the
// resolution engine.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noshsh/nosh/internal/executor"
	"github.com/noshsh/nosh/internal/prompt"
)

// Options configures a REPL.
type Options struct {
	Engine   *prompt.Engine
	Executor *executor.Executor
	Logger   *zap.Logger

	// Input and Output default to stdin and stdout.
	Input  io.Reader
	Output io.Writer

	// Version is shown in the welcome line.
	Version string
}

// REPL is the interactive driver loop.
type REPL struct {
	engine   *prompt.Engine
	executor *executor.Executor
	logger   *zap.Logger
	in       io.Reader
	out      io.Writer
	version  string
	format   string
	keys     []string
}

// New creates a REPL. The prompt format comes from the NOSH_PROMPT shell
// variable when set.
func New(opts Options) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	format := opts.Executor.GetEnv("NOSH_PROMPT")
	if format == "" {
		format = DefaultFormat
	}

	return &REPL{
		engine:   opts.Engine,
		executor: opts.Executor,
		logger:   logger,
		in:       in,
		out:      out,
		version:  opts.Version,
		format:   format,
		keys:     ExtractKeys(format),
	}
}

// Run reads and executes commands until EOF, "exit", or context
// cancellation.
func (r *REPL) Run(ctx context.Context) error {
	r.welcome()

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, r.renderPrompt(ctx))

		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		if handled, exit := r.handleBuiltin(ctx, line); handled {
			if exit {
				return nil
			}
			continue
		}

		start := time.Now()
		exitCode, err := r.executor.Run(ctx, line)
		elapsed := time.Since(start)
		r.engine.RecordCommandDuration(elapsed)

		if err != nil {
			r.logger.Debug("command failed",
				zap.String("command", line),
				zap.Int("exitCode", exitCode),
				zap.Duration("elapsed", elapsed))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// renderPrompt resolves the format's plugin variables and substitutes
// them, with builtin tokens, into a styled prompt string.
func (r *REPL) renderPrompt(ctx context.Context) string {
	values := r.engine.Resolve(ctx, r.keys)
	rendered := RenderPrompt(r.format, values, r.executor.Pwd())
	return promptStyle.Render(rendered)
}

func (r *REPL) welcome() {
	version := r.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintln(r.out, dimStyle.Render("nosh "+version+"  ·  /plugins to list prompt plugins, exit to quit"))
}
