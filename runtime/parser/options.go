package parser

import (
	"io"
	"log/slog"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	explicitZeroBounds bool
	logger             *slog.Logger
}

// WithExplicitZeroBounds lets a typed 0 in a selection literal mean an open
// bound, as the v1 dialect does. Without it only '_' is open and 0 is a syntax error.
func WithExplicitZeroBounds() ParserOpt {
	return func(c *ParserConfig) {
		c.explicitZeroBounds = true
	}
}

// WithLogger enables debug records for every parsed instruction
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

func newConfig(opts []ParserOpt) *ParserConfig {
	c := &ParserConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}
