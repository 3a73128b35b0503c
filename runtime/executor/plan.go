package executor

import (
	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/core/planfmt"
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/commands"
	"github.com/aledsdavies/sps/runtime/parser"
)

// PlanFor freezes a parsed program into a plan tagged with the dialect it
// was parsed under
func PlanFor(prog *parser.Program, dialect commands.Dialect) *planfmt.Plan {
	plan := &planfmt.Plan{
		Dialect:      dialect.Version,
		Instructions: make([]planfmt.Instruction, prog.Len()),
	}
	for i, in := range prog.Instructions {
		plan.Instructions[i] = planfmt.Instruction{Name: in.Name, Arg: in.Arg}
	}
	return plan
}

// ProgramFromPlan rebuilds an executable program from a plan. Source offsets
// are not stored in plans and come back as zero.
func ProgramFromPlan(plan *planfmt.Plan) *parser.Program {
	prog := &parser.Program{Instructions: make([]parser.Instruction, len(plan.Instructions))}
	for i, in := range plan.Instructions {
		prog.Instructions[i] = parser.Instruction{Name: in.Name, Arg: in.Arg}
	}
	return prog
}

// Compile parses text and freezes it into a plan
func Compile(text string, config Config) (*planfmt.Plan, error) {
	prog, err := Parse(text, config)
	if err != nil {
		return nil, err
	}
	dialect := config.Dialect
	if dialect.Version == "" {
		dialect = commands.LatestDialect()
	}
	return PlanFor(prog, dialect), nil
}

// ExecutePlan runs a compiled plan under the dialect it names. The dialect in
// config is ignored; MaxSteps and the other settings still apply. Every
// command is checked against the catalog before the table is touched.
func ExecutePlan(plan *planfmt.Plan, tbl *table.Table, config Config) (*ExecutionResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, sperrors.Wrap(sperrors.BadFormat, "invalid plan", err)
	}
	dialect, err := commands.LookupDialect(plan.Dialect)
	if err != nil {
		return nil, sperrors.Wrap(sperrors.BadInput, "plan dialect is not registered", err).
			WithContext("dialect", plan.Dialect)
	}

	registry := config.Registry
	if registry == nil {
		registry = commands.Global()
	}
	for i, in := range plan.Instructions {
		if _, ok := registry.Get(in.Name); !ok {
			return nil, sperrors.Newf(sperrors.CommandNotFound, "plan step %d: unknown command %q", i+1, in.Name)
		}
	}

	config.Dialect = dialect
	return Execute(ProgramFromPlan(plan), tbl, config)
}
