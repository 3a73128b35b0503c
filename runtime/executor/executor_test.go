package executor

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/commands"
	"github.com/aledsdavies/sps/runtime/parser"
	"github.com/aledsdavies/sps/runtime/sheetio"
)

// runText loads src, runs program and returns the saved output
func runText(t *testing.T, src, delims, program string, config Config) (string, *ExecutionResult, error) {
	t.Helper()
	tbl, err := sheetio.Parse(src, delims)
	require.NoError(t, err)

	result, err := Run(program, tbl, config)
	var out bytes.Buffer
	require.NoError(t, sheetio.Save(&out, tbl))
	return out.String(), result, err
}

func TestExecuteSetCells(t *testing.T) {
	out, result, err := runText(t, "1,2\n3,4\n", ",", "[1,1];set X;[2,2];set Y", Config{})
	require.NoError(t, err)
	assert.Equal(t, "X,2\n3,Y\n", out)
	assert.Equal(t, 4, result.StepsRun)
	assert.Equal(t, 4, result.Cursor)
	assert.Equal(t, "v2.0.0", result.Dialect)
}

func TestExecuteSumBelowRow(t *testing.T) {
	out, _, err := runText(t, "1,2,3\n", ",", "[1,1,1,3];sum [2,1]", Config{})
	require.NoError(t, err)
	assert.Equal(t, "1,2,3\n6,,\n", out)
}

func TestExecuteEmptyProgram(t *testing.T) {
	out, result, err := runText(t, "a b\n", " ", "", Config{})
	require.NoError(t, err)
	assert.Equal(t, "a b\n", out)
	assert.Equal(t, 0, result.StepsRun)
	assert.Equal(t, 0, result.Cursor)
}

func TestHugeColumnBoundOnEmptyTable(t *testing.T) {
	out, _, err := runText(t, "", " ", "[_,4000000000,_,_]", Config{})
	require.Error(t, err)
	assert.True(t, sperrors.IsKind(err, sperrors.OutOfMemory))
	assert.Equal(t, "", out)
}

func TestLargeResultsStayDecimal(t *testing.T) {
	out, _, err := runText(t, "999999\n", " ", "[1,1];def _0;inc _0;[2,1];use _0", Config{})
	require.NoError(t, err)
	assert.Equal(t, "999999\n1000000\n", out)

	out, _, err = runText(t, "500000,500000\n", ",", "[1,1,1,2];sum [2,1]", Config{})
	require.NoError(t, err)
	assert.Equal(t, "500000,500000\n1000000,\n", out)
}

func TestGotoPlusOneIsNoOp(t *testing.T) {
	without, r1, err := runText(t, "1\n", ",", "[1,1];set A", Config{})
	require.NoError(t, err)
	with, r2, err := runText(t, "1\n", ",", "[1,1];set A;goto +1", Config{})
	require.NoError(t, err)

	assert.Equal(t, without, with)
	assert.Equal(t, r1.Cursor+1, r2.Cursor)
}

func TestGotoSkipsForward(t *testing.T) {
	out, _, err := runText(t, "1\n", ",", "[1,1];goto +2;set SKIPPED;set B", Config{})
	require.NoError(t, err)
	assert.Equal(t, "B\n", out)
}

func TestGotoZeroHitsStepCeiling(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "goto 0", Config{MaxSteps: 50})
	require.Error(t, err)
	assert.True(t, sperrors.IsKind(err, sperrors.InfiniteLoop), "got %v", err)
	assert.Equal(t, 50, result.StepsRun)
	assert.Equal(t, 0, result.Cursor)
}

func TestDialectCeilings(t *testing.T) {
	v1, err := commands.LookupDialect("v1")
	require.NoError(t, err)

	_, result, err := runText(t, "", ",", "goto 0", Config{Dialect: v1})
	require.Error(t, err)
	assert.True(t, sperrors.IsKind(err, sperrors.InfiniteLoop))
	assert.Equal(t, v1.MaxSteps, result.StepsRun)
}

func TestIsZeroExitsLoop(t *testing.T) {
	// _0 holds "0" from the start, so the loop body never runs
	loop := "[1,1];def _0;iszero _0 +5;inc _1;[1,2];use _1;goto -4;[1,3];set done"
	out, result, err := runText(t, "0\n", ",", loop, Config{})
	require.NoError(t, err)
	assert.Equal(t, "0,,done\n", out)
	assert.Equal(t, 5, result.StepsRun)
}

func TestLoopCountsWithIsZero(t *testing.T) {
	// _0 counts up from -3 and the loop stops once it reads "0"
	loop := "[1,1];def _0;[1,2];iszero _0 +4;inc _0;inc _1;goto -3;use _1"
	out, result, err := runText(t, "-3\n", ",", loop, Config{})
	require.NoError(t, err)
	assert.Equal(t, "-3,3\n", out)
	assert.Equal(t, 3+4*3+1+1, result.StepsRun)
}

func TestJumpOutsideProgram(t *testing.T) {
	tests := []string{"goto -1", "goto +2", "[1,1];goto -5"}
	for _, program := range tests {
		t.Run(program, func(t *testing.T) {
			_, _, err := runText(t, "1\n", ",", program, Config{})
			require.Error(t, err)
			assert.True(t, sperrors.IsKind(err, sperrors.BadSyntax), "got %v", err)
		})
	}
}

func TestHaltWrapsIndexAndKeepsKind(t *testing.T) {
	out, result, err := runText(t, "a,b\n", ",", "[1,1];set Z;[1,1,1,2];def _3;set never", Config{})
	require.Error(t, err)

	assert.True(t, sperrors.IsKind(err, sperrors.BadSelection))
	assert.Contains(t, err.Error(), "instruction 4 (def _3)")
	assert.Equal(t, 3, result.Cursor)
	assert.Equal(t, 4, result.StepsRun)

	// no rollback of earlier instructions
	assert.Equal(t, "Z,b\n", out)
}

func TestParseErrorsSurfaceBeforeExecution(t *testing.T) {
	tbl, err := sheetio.Parse("1\n", ",")
	require.NoError(t, err)

	result, err := Run("[1,1];frobnicate;set X", tbl, Config{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, sperrors.IsKind(err, sperrors.CommandNotFound))
	assert.Equal(t, "1", tbl.Get(1, 1))
}

func TestZeroBoundsFollowDialect(t *testing.T) {
	_, _, err := runText(t, "1,2\n", ",", "[1,0,1,0];set X", Config{})
	require.Error(t, err)
	assert.True(t, sperrors.IsKind(err, sperrors.BadSyntax))

	v1, err := commands.LookupDialect("v1")
	require.NoError(t, err)
	out, _, err := runText(t, "1,2\n", ",", "[1,0,1,0];set X", Config{Dialect: v1})
	require.NoError(t, err)
	assert.Equal(t, "X,X\n", out)
}

func TestPrintGoesToOut(t *testing.T) {
	var diag bytes.Buffer
	out, _, err := runText(t, "a b\n", " ", "print;[1,3];set c;print", Config{Out: &diag})
	require.NoError(t, err)
	assert.Equal(t, "a b c\n", out)
	assert.Equal(t, "a b\na b c\n", diag.String())
}

func TestUnknownInstructionHalts(t *testing.T) {
	tbl := table.New(',')
	prog := &parser.Program{Instructions: []parser.Instruction{{Name: "explode "}}}

	_, err := Execute(prog, tbl, Config{})
	require.Error(t, err)
	assert.True(t, sperrors.IsKind(err, sperrors.CommandNotFound))
}

func TestCustomRegistry(t *testing.T) {
	reg := commands.NewRegistry()
	reg.Register(&commands.SetCommand{})
	reg.Register(&commands.SelectCommand{})

	tbl := table.New(',')
	_, err := Run("[1,1];set A", tbl, Config{Registry: reg})
	require.NoError(t, err)
	assert.Equal(t, "A", tbl.Get(1, 1))

	_, err = Run("clear", tbl, Config{Registry: reg})
	require.Error(t, err)
	assert.True(t, sperrors.IsKind(err, sperrors.CommandNotFound))
}

func TestExecuteTelemetryBasic(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "[1,1];goto +2;clear;set X", Config{Telemetry: TelemetryBasic})
	require.NoError(t, err)
	require.NotNil(t, result.Telemetry)

	assert.Equal(t, 4, result.Telemetry.InstructionCount)
	assert.Equal(t, 3, result.Telemetry.StepsRun)
	assert.Equal(t, 1, result.Telemetry.Jumps)
	assert.Equal(t, map[string]int{"select": 1, "goto ": 1, "set ": 1}, result.Telemetry.CommandCounts)
	assert.Nil(t, result.Telemetry.StepTimings)
	assert.Nil(t, result.Telemetry.FailedStep)
}

func TestExecuteTelemetryTiming(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "[1,1];set X", Config{Telemetry: TelemetryTiming})
	require.NoError(t, err)
	require.Len(t, result.Telemetry.StepTimings, 2)
	assert.Equal(t, "select", result.Telemetry.StepTimings[0].Command)
	assert.Equal(t, 1, result.Telemetry.StepTimings[1].Index)
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestExecuteTelemetryFailedStep(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "[1,1];swap 1", Config{Telemetry: TelemetryBasic})
	require.Error(t, err)
	require.NotNil(t, result.Telemetry.FailedStep)
	assert.Equal(t, 1, *result.Telemetry.FailedStep)
}

func TestExecuteDebugPaths(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "[1,1];set X", Config{Debug: DebugPaths})
	require.NoError(t, err)
	require.Len(t, result.DebugEvents, 2)
	assert.Equal(t, "enter_execute", result.DebugEvents[0].Event)
	assert.Equal(t, "exit_execute", result.DebugEvents[1].Event)
	assert.Equal(t, -1, result.DebugEvents[0].Index)
}

func TestExecuteDebugDetailed(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "[1,1];set X", Config{Debug: DebugDetailed})
	require.NoError(t, err)

	var events []string
	for _, ev := range result.DebugEvents {
		events = append(events, ev.Event)
	}
	assert.Equal(t, []string{"enter_execute", "step_start", "step_complete", "step_start", "step_complete", "exit_execute"}, events)
}

func TestExecuteDebugOffHasNoEvents(t *testing.T) {
	_, result, err := runText(t, "1\n", ",", "[1,1]", Config{})
	require.NoError(t, err)
	assert.Nil(t, result.DebugEvents)
	assert.Nil(t, result.Telemetry)
}

func TestExecuteLogsInstructions(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _, err := runText(t, "1\n", ",", "[1,1];set X", Config{Logger: logger})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "parsed instruction")
	assert.Contains(t, logs.String(), "executed instruction")
	assert.Contains(t, logs.String(), "command=\"set \"")
}

func TestExecuteNilProgramPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = Execute(nil, table.New(','), Config{})
	})
}
