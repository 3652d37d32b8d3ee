package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/interp"

	"github.com/noshsh/nosh/internal/core"
	"github.com/noshsh/nosh/internal/executor"
	"github.com/noshsh/nosh/internal/prompt"
	"github.com/noshsh/nosh/internal/prompt/plugins"
	"github.com/noshsh/nosh/internal/repl"
)

var BUILD_VERSION = "dev"

var command = flag.String("c", "", "run a command")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `nosh - a shell with a plugin-driven prompt

USAGE:
  nosh [options] [script.sh] [args...]

MODES:
  nosh                    Start an interactive POSIX-compatible shell
  nosh script.sh          Execute a shell script file
  nosh -c "command"       Execute a shell command

PROMPT:
  The prompt is assembled from plugin variables declared in
  ~/.nosh/plugins/*.yaml. Set NOSH_PROMPT to change the format, e.g.
  "{cwd_short} {git:branch}{git:dirty} $ ". Use /plugins and
  /inspect <name> inside the shell to debug plugins.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	logger, err := initializeLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new nosh session --------", zap.Any("args", os.Args))

	exec, err := executor.New(logger)
	if err != nil {
		panic(err)
	}

	err = run(exec, logger)

	// Handle exit status
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		os.Exit(int(exitStatus))
	}

	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		os.Exit(1)
	}
}

func run(exec *executor.Executor, logger *zap.Logger) error {
	ctx := context.Background()

	// nosh -c "echo hello"
	if *command != "" {
		exitCode, err := exec.Run(ctx, *command)
		if err != nil {
			return err
		}
		if exitCode != 0 {
			return interp.ExitStatus(exitCode)
		}
		return nil
	}

	// nosh
	if flag.NArg() == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return runInteractiveShell(ctx, exec, logger)
		}

		return exec.RunScriptFromReader(ctx, os.Stdin, "nosh")
	}

	// nosh script.sh
	for _, filePath := range flag.Args() {
		file, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open script file: %w", err)
		}
		err = exec.RunScriptFromReader(ctx, file, filePath)
		file.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func runInteractiveShell(ctx context.Context, exec *executor.Executor, logger *zap.Logger) error {
	engine, watcher, err := initializePrompt(exec, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize prompt engine: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	watcher.Start(watchCtx)
	defer watcher.Close()

	r := repl.New(repl.Options{
		Engine:   engine,
		Executor: exec,
		Logger:   logger,
		Version:  BUILD_VERSION,
	})

	return r.Run(ctx)
}

// initializePrompt installs the builtin plugin files on first run, loads
// the plugin store, and wires the engine and the definition-file watcher.
func initializePrompt(exec *executor.Executor, logger *zap.Logger) (*prompt.Engine, *plugins.Watcher, error) {
	if err := plugins.InstallBuiltins(core.PluginsDir()); err != nil {
		// Not fatal: the prompt degrades to builtin tokens only.
		logger.Warn("failed to install builtin plugins", zap.Error(err))
	}

	store := plugins.NewStore(plugins.StoreOptions{
		PluginsDir:  core.PluginsDir(),
		PackagesDir: core.PackagesDir(),
		Logger:      logger,
	})
	if err := store.Load(); err != nil {
		logger.Warn("failed to load prompt plugins", zap.Error(err))
	}

	engine := prompt.New(prompt.Options{
		Store:  store,
		Runner: exec,
		Logger: logger,
	})

	watcher, err := plugins.NewWatcher(store, engine.Reload, logger)
	if err != nil {
		return nil, nil, err
	}

	return engine, watcher, nil
}

func initializeLogger() (*zap.Logger, error) {
	logLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level := os.Getenv("NOSH_LOG_LEVEL"); level != "" {
		if parsed, err := zap.ParseAtomicLevel(level); err == nil {
			logLevel = parsed
		}
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs only go to file to avoid interfering with the prompt.
	// Use `tail -f ~/.nosh/nosh.log` to monitor logs in real-time.

	return loggerConfig.Build()
}
