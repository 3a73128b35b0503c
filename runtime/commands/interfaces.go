package commands

import (
	"fmt"
	"io"

	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/vars"
)

// Env is everything a command may touch while it runs
type Env struct {
	Table   *table.Table
	Vars    *vars.Store
	Dialect Dialect
	Out     io.Writer // diagnostics written by print; nil discards
}

// Command is one entry of the command catalog
type Command interface {
	// Name is the catalog prefix, including a trailing space when the command takes an argument
	Name() string
	Description() string

	// Execute runs the command with its literal argument and tells the
	// interpreter where to go next
	Execute(env *Env, arg string) Result
}

// Signal tells the interpreter how to move the cursor after a command
type Signal int

const (
	SignalContinue Signal = iota // advance to the next instruction
	SignalJump                   // move the cursor by Result.Offset
	SignalHalt                   // stop with Result.Err
)

func (s Signal) String() string {
	switch s {
	case SignalContinue:
		return "continue"
	case SignalJump:
		return "jump"
	case SignalHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// Result is the control signal returned by every command
type Result struct {
	Signal Signal
	Offset int   // relative target for SignalJump; +1 is the next instruction
	Err    error // cause for SignalHalt
}

// Continue advances to the next instruction
func Continue() Result {
	return Result{Signal: SignalContinue}
}

// Jump moves the cursor by offset instructions relative to the current one
func Jump(offset int) Result {
	return Result{Signal: SignalJump, Offset: offset}
}

// Halt stops execution with err
func Halt(err error) Result {
	return Result{Signal: SignalHalt, Err: err}
}

// fromError maps a nil error to Continue and anything else to Halt
func fromError(err error) Result {
	if err != nil {
		return Halt(err)
	}
	return Continue()
}

func (r Result) String() string {
	switch r.Signal {
	case SignalJump:
		return fmt.Sprintf("jump(%+d)", r.Offset)
	case SignalHalt:
		return fmt.Sprintf("halt(%v)", r.Err)
	default:
		return r.Signal.String()
	}
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}
