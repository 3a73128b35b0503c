package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/planfmt"
	"github.com/aledsdavies/sps/runtime/commands"
	"github.com/aledsdavies/sps/runtime/config"
	"github.com/aledsdavies/sps/runtime/executor"
	"github.com/aledsdavies/sps/runtime/logging"
	"github.com/aledsdavies/sps/runtime/sheetio"
)

// app holds the streams and settings shared by every subcommand
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Persistent flags
	dialect     string
	dialectFile string
	maxSteps    int
	envFile     string
	debug       bool
	noColor     bool

	// Filled by setup before any subcommand runs
	cfg    *config.Config
	logger *slog.Logger
	runID  string
}

// sourceOptions selects where the program comes from
type sourceOptions struct {
	commandFile string // -c: read command text from a file ("-" for stdin)
	program     string // --program: a compiled plan file
}

// runOptions are the flags of the table-editing command
type runOptions struct {
	sourceOptions
	delimiters string
	output     string
}

// run executes the CLI and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		if a.logger != nil {
			a.logger.Debug("run failed", "error", err)
		}
		FormatError(stderr, err, ShouldUseColor(a.noColor, stderr))
	}
	return ExitCode(err)
}

func (a *app) newRootCommand() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "sps [flags] (COMMANDS | -c CMDFILE | --program PLAN) FILE",
		Short: "Edit a delimiter-separated table with a command sequence",
		Long: `sps loads a table file, runs a semicolon-separated command sequence
against it and writes the table back in place.

  sps -d , '[1,1];set hello' table.csv
  sps -c edits.sps table.txt`,
		Args:          a.tableArgs(opts),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTable(cmd, opts, args)
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.dialect, "dialect", "", "Dialect version (default: latest, env SPS_DIALECT)")
	pf.StringVar(&a.dialectFile, "dialect-file", "", "JSON file deriving a custom dialect (env SPS_DIALECT_FILE)")
	pf.IntVar(&a.maxSteps, "max-steps", 0, "Override the dialect's step ceiling (env SPS_MAX_STEPS)")
	pf.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before configuration")
	pf.BoolVar(&a.debug, "debug", false, "Enable debug logging and execution tracing")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	addRunFlags(rootCmd, opts)

	rootCmd.AddCommand(
		a.newRunCommand(),
		a.newPlanCommand(),
		a.newCompileCommand(),
		a.newDialectsCommand(),
	)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.delimiters, "delimiters", "d", sheetio.DefaultDelimiters, "Field delimiters; the first is written (env SPS_DELIMITERS)")
	f.StringVarP(&opts.commandFile, "command-file", "c", "", "Read the command sequence from a file (- for stdin)")
	f.StringVar(&opts.program, "program", "", "Run a compiled plan file")
	f.StringVarP(&opts.output, "output", "o", "", "Write the table here instead of in place")
}

func (a *app) newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [flags] (COMMANDS | -c CMDFILE | --program PLAN) FILE",
		Short: "Run a command sequence or compiled plan against a table file",
		Args:  a.tableArgs(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTable(cmd, opts, args)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

// tableArgs accepts FILE after -c or --program and COMMANDS FILE otherwise
func (a *app) tableArgs(opts *runOptions) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if opts.commandFile != "" && opts.program != "" {
			return usageError("-c and --program cannot be used together")
		}
		want := 2
		if opts.commandFile != "" || opts.program != "" {
			want = 1
		}
		if len(args) != want {
			if want == 1 {
				return usageError("expected a table FILE, got %d arguments", len(args))
			}
			return usageError("expected COMMANDS and a table FILE, got %d arguments", len(args))
		}
		return nil
	}
}

// setup loads configuration, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	if _, err := config.LoadDotEnv(a.envFile); err != nil {
		return &CLIError{Type: "config", Message: "cannot load environment file", Err: err}
	}
	cfg, err := config.Load()
	if err != nil {
		return &CLIError{Type: "config", Message: "invalid configuration", Err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect.Version = a.dialect
	}
	if flags.Changed("dialect-file") {
		cfg.Dialect.File = a.dialectFile
	}
	if flags.Changed("max-steps") {
		cfg.Dialect.MaxSteps = a.maxSteps
	}
	if a.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return &CLIError{Type: "config", Message: "invalid configuration", Err: err}
	}

	a.cfg = cfg
	a.logger, a.runID = logging.WithRunID(logging.New(cfg.Logging.Level, cfg.Logging.Format, a.stderr))
	a.logger.Debug("configuration loaded",
		"command", cmd.Name(),
		"dialect", cfg.Dialect.Version,
		"dialect_file", cfg.Dialect.File,
		"max_steps", cfg.Dialect.MaxSteps,
		"delimiters", cfg.Sheet.Delimiters,
	)
	return nil
}

// resolveDialect picks the dialect from configuration
func (a *app) resolveDialect() (commands.Dialect, error) {
	d, err := a.cfg.ResolveDialect()
	if err != nil {
		if _, ok := sperrors.KindOf(err); ok {
			return commands.Dialect{}, err
		}
		return commands.Dialect{}, &CLIError{
			Type:    "usage",
			Message: "cannot select dialect",
			Err:     err,
			Hint:    "Run 'sps dialects' to list known versions.",
		}
	}
	return d, nil
}

func (a *app) executorConfig(d commands.Dialect) executor.Config {
	cfg := executor.Config{
		Dialect:  d,
		MaxSteps: a.cfg.Dialect.MaxSteps,
		Out:      a.stderr,
		Logger:   a.logger,
	}
	if a.debug {
		cfg.Debug = executor.DebugPaths
		cfg.Telemetry = executor.TelemetryTiming
	}
	return cfg
}

// loadPlan compiles the command text or reads the compiled plan the options name
func (a *app) loadPlan(opts sourceOptions, args []string, config executor.Config) (*planfmt.Plan, error) {
	if opts.program != "" {
		return readPlanFile(opts.program)
	}

	text, err := a.commandText(opts, args)
	if err != nil {
		return nil, err
	}
	return executor.Compile(text, config)
}

// commandText returns the command sequence from -c or the first argument
func (a *app) commandText(opts sourceOptions, args []string) (string, error) {
	switch opts.commandFile {
	case "":
		return args[0], nil
	case "-":
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", sperrors.NewFileAccessError("stdin", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(opts.commandFile)
		if err != nil {
			return "", sperrors.NewFileAccessError(opts.commandFile, err)
		}
		return string(data), nil
	}
}

// runTable loads the table, runs the program and writes the table back.
// Nothing is written when the program fails.
func (a *app) runTable(cmd *cobra.Command, opts *runOptions, args []string) error {
	dialect, err := a.resolveDialect()
	if err != nil {
		return err
	}
	execConfig := a.executorConfig(dialect)

	delims := a.cfg.Sheet.Delimiters
	if cmd.Flags().Changed("delimiters") {
		delims = opts.delimiters
	}

	plan, err := a.loadPlan(opts.sourceOptions, args, execConfig)
	if err != nil {
		return err
	}

	tablePath := args[len(args)-1]
	tbl, err := sheetio.LoadFile(tablePath, delims)
	if err != nil {
		return err
	}

	result, err := executor.ExecutePlan(plan, tbl, execConfig)
	a.logResult(result, err)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = tablePath
	}
	return sheetio.SaveFile(out, tbl)
}

// logResult records how the run went; telemetry is only collected with --debug
func (a *app) logResult(result *executor.ExecutionResult, err error) {
	if result == nil {
		return
	}
	attrs := []any{
		"dialect", result.Dialect,
		"steps", result.StepsRun,
		"cursor", result.Cursor,
		"duration", result.Duration,
	}
	if t := result.Telemetry; t != nil {
		attrs = append(attrs, "jumps", t.Jumps, "commands", t.CommandCounts)
		if t.FailedStep != nil {
			attrs = append(attrs, "failed_step", *t.FailedStep+1)
		}
	}
	for _, ev := range result.DebugEvents {
		a.logger.Debug("trace", "event", ev.Event, "index", ev.Index, "context", ev.Context)
	}
	if err != nil {
		a.logger.Info("program halted", append(attrs, "error", err)...)
		return
	}
	a.logger.Info("program finished", attrs...)
}

// readPlanFile decodes a compiled plan
func readPlanFile(path string) (*planfmt.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sperrors.NewFileAccessError(path, err)
	}
	defer f.Close()

	plan, _, err := planfmt.Decode(f)
	if err != nil {
		return nil, sperrors.Wrap(sperrors.BadFormat, fmt.Sprintf("%s is not a valid plan file", path), err)
	}
	return plan, nil
}
