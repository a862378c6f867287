// Package cli implements the kladia command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	envFile   string
	backend   string
	logLevel  string
	logFormat string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "kladia" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "kladia",
		Short: "An in-memory registry of graph entities",
		Long: `kladia keeps tables, graphs, nodes, arrows and links in five separate
namespaces, each mapping an identifier to a nested attribute mapping.
The registry lives for one process; drive it with YAML scripts.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/kladia)")
	pf.StringVar(&a.flags.envFile, "env-file", "", "dotenv file to load (default: $(CWD)/.env)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: memory or sqlite")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newKindsCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newSelfTestCmd(a))

	return root
}

// Execute runs the root command with os.Args and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, NewRootCmd(), os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "kladia:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// load resolves configuration and builds the logger before any subcommand runs.
func (a *app) load(cmd *cobra.Command, args []string) error {
	envFile, err := resolveEnvFile(a.flags.envFile)
	if err != nil {
		return err
	}
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	configDir, cfg, err := loadConfig(a.flags.configDir, cmd)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.cfg = cfg
	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	a.logger.Debug("configuration loaded",
		"config_dir", configDir,
		"backend", cfg.Backend,
		"env_file", envFile,
	)
	return nil
}

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as a failure of the environment rather than of the input.
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps err to a process exit code. Anything not marked as a system
// failure is a user error.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, types.ErrRegistryDetached) {
		return exitSysError
	}
	return exitUserError
}
