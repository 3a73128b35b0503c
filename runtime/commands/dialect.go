package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/aledsdavies/sps/runtime/parser"
)

// FindMatch selects how [find STR] compares cells
type FindMatch string

const (
	FindExact    FindMatch = "exact"    // cell == STR
	FindContains FindMatch = "contains" // STR is a substring of the cell
)

// Dialect fixes the behaviors that differ between versions of the command language
type Dialect struct {
	Version            string    // semver, e.g. v2.0.0
	Description        string    // one line for listings
	UseBroadcast       bool      // use _N writes every selected cell instead of requiring one
	FindMatch          FindMatch // [find STR] comparison
	MaxSteps           int       // iteration ceiling
	ExplicitZeroBounds bool      // a typed 0 in a selection is an open bound
}

// Match applies the dialect's [find] comparison
func (d Dialect) Match(value, needle string) bool {
	if d.FindMatch == FindContains {
		return strings.Contains(value, needle)
	}
	return value == needle
}

// ParserOpts returns the parser options implied by the dialect
func (d Dialect) ParserOpts() []parser.ParserOpt {
	if d.ExplicitZeroBounds {
		return []parser.ParserOpt{parser.WithExplicitZeroBounds()}
	}
	return nil
}

// Validate checks the dialect fields
func (d Dialect) Validate() error {
	var errs []string
	if !semver.IsValid(d.Version) {
		errs = append(errs, fmt.Sprintf("version %q is not valid semver", d.Version))
	}
	if d.FindMatch != FindExact && d.FindMatch != FindContains {
		errs = append(errs, fmt.Sprintf("find match %q must be %q or %q", d.FindMatch, FindExact, FindContains))
	}
	if d.MaxSteps <= 0 {
		errs = append(errs, fmt.Sprintf("max steps (%d) must be positive", d.MaxSteps))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid dialect: %s", strings.Join(errs, "; "))
	}
	return nil
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect adds a dialect under its canonical version
func RegisterDialect(d Dialect) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.Version = semver.Canonical(d.Version)

	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	if _, exists := dialects[d.Version]; exists {
		return fmt.Errorf("dialect %s already registered", d.Version)
	}
	dialects[d.Version] = d
	return nil
}

// LookupDialect finds a dialect by version. "2", "v2", "2.0.0" and "v2.0.0"
// name the same dialect; an empty version selects the latest.
func LookupDialect(version string) (Dialect, error) {
	if version == "" {
		return LatestDialect(), nil
	}
	canonical := normalizeVersion(version)
	if canonical == "" {
		return Dialect{}, fmt.Errorf("dialect version %q is not valid semver", version)
	}

	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[canonical]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown dialect %s (known: %s)", canonical, strings.Join(versionsLocked(), ", "))
	}
	return d, nil
}

// LatestDialect returns the dialect with the highest version
func LatestDialect() Dialect {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	versions := versionsLocked()
	return dialects[versions[len(versions)-1]]
}

// Dialects returns every registered dialect, oldest first
func Dialects() []Dialect {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	var out []Dialect
	for _, v := range versionsLocked() {
		out = append(out, dialects[v])
	}
	return out
}

func versionsLocked() []string {
	versions := make([]string, 0, len(dialects))
	for v := range dialects {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(versions[i], versions[j]) < 0
	})
	return versions
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// Built-in dialects. v1 follows the early drafts of the language; v2 is canonical.
func init() {
	builtin := []Dialect{
		{
			Version:            "v1.0.0",
			Description:        "early drafts: use _N needs one cell, substring find, 10k steps, 0 is open",
			UseBroadcast:       false,
			FindMatch:          FindContains,
			MaxSteps:           10_000,
			ExplicitZeroBounds: true,
		},
		{
			Version:            "v2.0.0",
			Description:        "canonical: use _N broadcasts, exact find, 1M steps, only _ is open",
			UseBroadcast:       true,
			FindMatch:          FindExact,
			MaxSteps:           1_000_000,
			ExplicitZeroBounds: false,
		},
	}
	for _, d := range builtin {
		if err := RegisterDialect(d); err != nil {
			panic(err)
		}
	}
}
