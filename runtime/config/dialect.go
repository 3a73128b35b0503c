package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	sperrors "github.com/aledsdavies/sps/core/errors"
	"github.com/aledsdavies/sps/runtime/commands"
)

//go:embed dialect.schema.json
var dialectSchemaJSON []byte

const dialectSchemaURL = "schema://dialect.json"

var (
	dialectSchemaOnce sync.Once
	dialectSchema     *jsonschema.Schema
	dialectSchemaErr  error
)

// DefaultDialectLabel names a derived dialect whose file gives no label
const DefaultDialectLabel = "custom"

// dialectFile is the JSON form of a derived dialect. Absent fields keep the
// base dialect's value.
type dialectFile struct {
	Base               string  `json:"base"`
	Label              string  `json:"label"`
	Description        string  `json:"description"`
	UseBroadcast       *bool   `json:"use_broadcast"`
	FindMatch          *string `json:"find_match"`
	MaxSteps           *int    `json:"max_steps"`
	ExplicitZeroBounds *bool   `json:"explicit_zero_bounds"`
}

func compiledDialectSchema() (*jsonschema.Schema, error) {
	dialectSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(dialectSchemaURL, bytes.NewReader(dialectSchemaJSON)); err != nil {
			dialectSchemaErr = err
			return
		}
		dialectSchema, dialectSchemaErr = compiler.Compile(dialectSchemaURL)
	})
	return dialectSchema, dialectSchemaErr
}

// ParseDialectFile validates a dialect file and derives the dialect it
// describes. The result is versioned <base>-<label>, e.g. v2.0.0-custom.
func ParseDialectFile(data []byte) (commands.Dialect, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return commands.Dialect{}, sperrors.Wrap(sperrors.BadInput, "dialect file is not JSON", err)
	}

	schema, err := compiledDialectSchema()
	if err != nil {
		return commands.Dialect{}, fmt.Errorf("compile dialect schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return commands.Dialect{}, sperrors.Wrap(sperrors.BadInput, "dialect file does not match schema", err)
	}

	var f dialectFile
	if err := json.Unmarshal(data, &f); err != nil {
		return commands.Dialect{}, sperrors.Wrap(sperrors.BadInput, "dialect file is malformed", err)
	}

	base, err := commands.LookupDialect(f.Base)
	if err != nil {
		return commands.Dialect{}, sperrors.Wrap(sperrors.BadInput, "dialect file base", err)
	}

	d := base
	label := f.Label
	if label == "" {
		label = DefaultDialectLabel
	}
	d.Version = base.Version + "-" + label
	d.Description = f.Description
	if d.Description == "" {
		d.Description = "derived from " + base.Version
	}
	if f.UseBroadcast != nil {
		d.UseBroadcast = *f.UseBroadcast
	}
	if f.FindMatch != nil {
		d.FindMatch = commands.FindMatch(*f.FindMatch)
	}
	if f.MaxSteps != nil {
		d.MaxSteps = *f.MaxSteps
	}
	if f.ExplicitZeroBounds != nil {
		d.ExplicitZeroBounds = *f.ExplicitZeroBounds
	}

	if err := d.Validate(); err != nil {
		return commands.Dialect{}, sperrors.Wrap(sperrors.BadInput, "derived dialect", err)
	}
	return d, nil
}

// LoadDialectFile reads and parses the dialect file at path
func LoadDialectFile(path string) (commands.Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return commands.Dialect{}, sperrors.NewFileAccessError(path, err)
	}
	return ParseDialectFile(data)
}

// ResolveDialect returns the dialect the configuration selects. A dialect
// file takes precedence over Version and is registered so plans compiled
// under it can be run again.
func (c *Config) ResolveDialect() (commands.Dialect, error) {
	if c.Dialect.File == "" {
		return commands.LookupDialect(c.Dialect.Version)
	}

	d, err := LoadDialectFile(c.Dialect.File)
	if err != nil {
		return commands.Dialect{}, err
	}
	if err := ensureRegistered(d); err != nil {
		return commands.Dialect{}, err
	}
	return d, nil
}

func ensureRegistered(d commands.Dialect) error {
	existing, err := commands.LookupDialect(d.Version)
	if err != nil {
		return commands.RegisterDialect(d)
	}
	if existing != d {
		return fmt.Errorf("dialect %s is already registered with different settings", d.Version)
	}
	return nil
}
