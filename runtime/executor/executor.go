// Package executor runs parsed programs against a table.
//
// The interpreter owns the execution cursor. Commands only report what
// should happen next through their Result; the executor applies it, enforces
// the step ceiling and stops on the first failure.
package executor

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/invariant"
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/commands"
	"github.com/aledsdavies/sps/runtime/parser"
	"github.com/aledsdavies/sps/runtime/vars"
)

// Config configures the executor
type Config struct {
	Dialect   commands.Dialect   // zero value selects the latest dialect
	MaxSteps  int                // overrides Dialect.MaxSteps when positive
	Registry  *commands.Registry // nil uses the global catalog
	Out       io.Writer          // diagnostic output for print; nil discards
	Logger    *slog.Logger       // nil discards
	Debug     DebugLevel         // Debug tracing (development only)
	Telemetry TelemetryLevel     // Telemetry collection (production-safe)
}

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff      DebugLevel = iota // No debug info (default)
	DebugPaths                      // Enter/exit tracing
	DebugDetailed                   // Every instruction and its signal
)

// TelemetryLevel controls telemetry collection (production-safe)
type TelemetryLevel int

const (
	TelemetryOff    TelemetryLevel = iota // Zero overhead (default)
	TelemetryBasic                        // Step counts only
	TelemetryTiming                       // Counts + timing per step
)

// ExecutionResult holds the result of program execution
type ExecutionResult struct {
	StepsRun    int                 // Instructions executed, counting repeats
	Cursor      int                 // Final cursor; equals the program length on success
	Duration    time.Duration       // Total execution time
	Dialect     string              // Dialect version the program ran under
	Telemetry   *ExecutionTelemetry // Additional metrics (nil if TelemetryOff)
	DebugEvents []DebugEvent        // Debug events (nil if DebugOff)
}

// ExecutionTelemetry holds additional execution metrics
type ExecutionTelemetry struct {
	InstructionCount int            // Instructions in the program
	StepsRun         int            // Instructions executed
	Jumps            int            // Taken jumps
	CommandCounts    map[string]int // Executions per command name
	StepTimings      []StepTiming   // Per-step timing (if TelemetryTiming)
	FailedStep       *int           // Index of the failing instruction (if any)
}

// StepTiming holds timing information for a single executed instruction
type StepTiming struct {
	Index    int
	Command  string
	Duration time.Duration
	Signal   commands.Signal
}

// DebugEvent represents a debug trace event
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_execute", "step_start", "step_complete", ...
	Index     int    // Instruction index (-1 if not instruction-specific)
	Context   string // Additional context
}

// executor holds execution state
type executor struct {
	config   Config
	registry *commands.Registry
	logger   *slog.Logger
	maxSteps int

	// Execution state
	prog     *parser.Program
	env      *commands.Env
	cursor   int
	stepsRun int

	// Observability
	debugEvents []DebugEvent
	telemetry   *ExecutionTelemetry
	startTime   time.Time
}

// Execute runs prog against tbl with a fresh variable store.
//
// The error is nil on normal completion. Otherwise it wraps the failing
// command's error with the instruction index; its kind is preserved for
// errors.Is. The result is returned in both cases.
func Execute(prog *parser.Program, tbl *table.Table, config Config) (*ExecutionResult, error) {
	// INPUT CONTRACT (preconditions)
	invariant.NotNil(prog, "prog")
	invariant.NotNil(tbl, "tbl")

	e := newExecutor(prog, config)
	e.env = &commands.Env{
		Table:   tbl,
		Vars:    vars.New(),
		Dialect: e.config.Dialect,
		Out:     config.Out,
	}

	if config.Debug >= DebugPaths {
		e.recordDebugEvent("enter_execute", -1, fmt.Sprintf("instructions=%d, max_steps=%d, dialect=%s",
			prog.Len(), e.maxSteps, e.config.Dialect.Version))
	}

	err := e.run()

	if e.telemetry != nil {
		e.telemetry.StepsRun = e.stepsRun
		if err != nil {
			failed := e.cursor
			e.telemetry.FailedStep = &failed
		}
	}

	duration := time.Since(e.startTime)
	if config.Debug >= DebugPaths {
		e.recordDebugEvent("exit_execute", -1, fmt.Sprintf("steps_run=%d, cursor=%d, duration=%v, err=%v",
			e.stepsRun, e.cursor, duration, err))
	}

	// OUTPUT CONTRACT (postconditions)
	invariant.InRange(e.cursor, 0, prog.Len(), "cursor")
	invariant.Postcondition(e.stepsRun <= e.maxSteps, "steps run (%d) exceeds ceiling (%d)", e.stepsRun, e.maxSteps)
	invariant.Postcondition(err != nil || e.cursor == prog.Len(), "successful run must end at the program end")

	return &ExecutionResult{
		StepsRun:    e.stepsRun,
		Cursor:      e.cursor,
		Duration:    duration,
		Dialect:     e.config.Dialect.Version,
		Telemetry:   e.telemetry,
		DebugEvents: e.debugEvents,
	}, err
}

func newExecutor(prog *parser.Program, config Config) *executor {
	if config.Dialect.Version == "" {
		config.Dialect = commands.LatestDialect()
	}
	maxSteps := config.Dialect.MaxSteps
	if config.MaxSteps > 0 {
		maxSteps = config.MaxSteps
	}
	registry := config.Registry
	if registry == nil {
		registry = commands.Global()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &executor{
		config:    config,
		registry:  registry,
		logger:    logger,
		maxSteps:  maxSteps,
		prog:      prog,
		startTime: time.Now(),
	}
	if config.Telemetry != TelemetryOff {
		e.telemetry = &ExecutionTelemetry{
			InstructionCount: prog.Len(),
			CommandCounts:    make(map[string]int),
		}
		if config.Telemetry == TelemetryTiming {
			e.telemetry.StepTimings = make([]StepTiming, 0, prog.Len())
		}
	}
	return e
}

// run is the interpreter loop. The cursor only moves here.
func (e *executor) run() error {
	n := e.prog.Len()
	for e.cursor < n {
		if e.stepsRun >= e.maxSteps {
			return sperrors.Newf(sperrors.InfiniteLoop, "program did not finish within %d steps", e.maxSteps).
				WithContext("cursor", e.cursor)
		}

		in := e.prog.Instructions[e.cursor]
		res := e.step(in)
		e.stepsRun++

		switch res.Signal {
		case commands.SignalContinue:
			e.cursor++
		case commands.SignalJump:
			target := e.cursor + res.Offset
			if target < 0 || target > n {
				err := sperrors.Newf(sperrors.BadSyntax, "jump %+d from instruction %d leaves the program (0..%d)", res.Offset, e.cursor, n)
				return e.wrap(in, err)
			}
			if e.telemetry != nil {
				e.telemetry.Jumps++
			}
			e.cursor = target
		case commands.SignalHalt:
			invariant.NotNil(res.Err, "halt error")
			return e.wrap(in, res.Err)
		default:
			invariant.Invariant(false, "unknown signal %d", res.Signal)
		}
	}
	return nil
}

// step executes one instruction and records it
func (e *executor) step(in parser.Instruction) commands.Result {
	name := displayName(in.Name)
	if e.config.Debug >= DebugDetailed {
		e.recordDebugEvent("step_start", e.cursor, name+" "+in.Arg)
	}

	cmd, ok := e.registry.Get(in.Name)
	if !ok {
		return commands.Halt(sperrors.NewCommandNotFoundError(in.Name, in.Offset, ""))
	}

	start := time.Now()
	res := cmd.Execute(e.env, in.Arg)
	elapsed := time.Since(start)

	e.logger.Debug("executed instruction",
		"index", e.cursor,
		"command", name,
		"arg", in.Arg,
		"signal", res.String())

	if e.telemetry != nil {
		e.telemetry.CommandCounts[name]++
		if e.config.Telemetry == TelemetryTiming {
			e.telemetry.StepTimings = append(e.telemetry.StepTimings, StepTiming{
				Index:    e.cursor,
				Command:  name,
				Duration: elapsed,
				Signal:   res.Signal,
			})
		}
	}
	if e.config.Debug >= DebugDetailed {
		e.recordDebugEvent("step_complete", e.cursor, fmt.Sprintf("signal=%s, duration=%v", res, elapsed))
	}
	return res
}

func (e *executor) wrap(in parser.Instruction, err error) error {
	return fmt.Errorf("instruction %d (%s): %w", e.cursor+1, displayName(in.Name)+in.Arg, err)
}

// recordDebugEvent records a debug event
func (e *executor) recordDebugEvent(event string, index int, context string) {
	e.debugEvents = append(e.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Index:     index,
		Context:   context,
	})
}

func displayName(name string) string {
	if name == parser.SelectName {
		return "select"
	}
	return name
}
