package builtin

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/policy"
)

// Factory constructs a manager from a textual spec argument. Factories let
// the CLI and daemon name managers over the wire ("locked",
// "owneronly:0x...") without shipping code.
type Factory struct {
	Name        string
	Description string

	// New builds the manager. arg is the text after "name:", possibly empty.
	New func(arg string) (policy.Manager, error)
}

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a factory by name.
func Register(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("builtin: factory name is required")
	}
	if f.New == nil {
		return fmt.Errorf("builtin: factory %q missing New", f.Name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[f.Name]; exists {
		return fmt.Errorf("builtin: factory %q already registered", f.Name)
	}
	factories[f.Name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(f Factory) {
	if err := Register(f); err != nil {
		panic(err)
	}
}

// Resolve constructs a manager from a spec of the form "name" or "name:arg".
func Resolve(spec string) (policy.Manager, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("builtin: unknown manager %q", name)
	}
	return f.New(arg)
}

// List returns registered factories sorted by name.
func List() []Factory {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Factory, 0, len(factories))
	for _, f := range factories {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func init() {
	MustRegister(Factory{
		Name:        "locked",
		Description: "Irrevocable manager: denies swap, removal, and every governed mutation",
		New: func(arg string) (policy.Manager, error) {
			if arg != "" {
				return nil, fmt.Errorf("builtin: locked takes no argument")
			}
			return Locked{}, nil
		},
	})
	MustRegister(Factory{
		Name:        "owneronly",
		Description: "Approves swap/removal/mutations only for a fixed address (owneronly:0x...)",
		New: func(arg string) (policy.Manager, error) {
			owner, err := addr.Parse(arg)
			if err != nil {
				return nil, fmt.Errorf("builtin: owneronly requires an address argument: %w", err)
			}
			return OwnerOnly{Owner: owner}, nil
		},
	})
}
