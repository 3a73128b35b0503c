package executor

import (
	"github.com/aledsdavies/sps/core/table"
	"github.com/aledsdavies/sps/runtime/commands"
	"github.com/aledsdavies/sps/runtime/parser"
)

// Parse parses command text against the catalog and dialect config would execute with
func Parse(text string, config Config) (*parser.Program, error) {
	dialect := config.Dialect
	if dialect.Version == "" {
		dialect = commands.LatestDialect()
	}
	registry := config.Registry
	if registry == nil {
		registry = commands.Global()
	}

	opts := dialect.ParserOpts()
	if config.Logger != nil {
		opts = append(opts, parser.WithLogger(config.Logger))
	}
	return parser.ParseProgram(text, registry.Catalog(), opts...)
}

// Run parses text and executes it against tbl
func Run(text string, tbl *table.Table, config Config) (*ExecutionResult, error) {
	prog, err := Parse(text, config)
	if err != nil {
		return nil, err
	}
	return Execute(prog, tbl, config)
}
