package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the command catalog
type Registry struct {
	commands map[string]Command
	mu       sync.RWMutex
}

// Global registry instance, filled by init functions in this package
var globalRegistry = NewRegistry()

// NewRegistry creates an empty command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command; registering a name twice is a programming error
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.Name()]; exists {
		panic(fmt.Sprintf("command %q registered twice", cmd.Name()))
	}
	r.commands[cmd.Name()] = cmd
}

// Get retrieves a command by catalog name
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// Catalog returns every registered name, sorted, for the program parser
func (r *Registry) Catalog() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListAll returns every registered command sorted by name
func (r *Registry) ListAll() []Command {
	names := r.Catalog()
	out := make([]Command, 0, len(names))
	for _, name := range names {
		cmd, _ := r.Get(name)
		out = append(out, cmd)
	}
	return out
}

// Global registry functions for convenience

// Register adds a command to the global registry
func Register(cmd Command) {
	globalRegistry.Register(cmd)
}

// Get retrieves a command from the global registry
func Get(name string) (Command, error) {
	cmd, exists := globalRegistry.Get(name)
	if !exists {
		return nil, fmt.Errorf("command %q not registered", name)
	}
	return cmd, nil
}

// Catalog returns the global command names
func Catalog() []string {
	return globalRegistry.Catalog()
}

// ListAll returns every command in the global registry
func ListAll() []Command {
	return globalRegistry.ListAll()
}

// Global returns the global registry
func Global() *Registry {
	return globalRegistry
}
