package layout

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Engine computes a positioned layout. Implementations must be
// deterministic and should return promptly when ctx is cancelled.
type Engine interface {
	Name() string
	Layout(ctx context.Context, g *graph.Graph, sheet *style.Sheet, p Params) (graph.Layout, error)
}

// Built-in engine names.
const (
	EngineLayered  = "layered"
	EngineGraphviz = "graphviz"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Engine{}
	builtins   sync.Once
)

func registerBuiltins() {
	builtins.Do(func() {
		Register(Layered{})
		Register(Graphviz{})
	})
}

// Register adds an engine under its name. Registering a name twice keeps
// the first engine.
func Register(e Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[e.Name()]; !ok {
		registry[e.Name()] = e
	}
}

// Lookup returns the engine registered under name. An empty name selects
// the layered engine.
func Lookup(name string) (Engine, error) {
	registerBuiltins()
	if name == "" {
		name = EngineLayered
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout engine %q (available: %v)", name, engineNames())
	}
	return e, nil
}

// Engines returns the registered engine names, sorted.
func Engines() []string {
	registerBuiltins()
	registryMu.RLock()
	defer registryMu.RUnlock()
	return engineNames()
}

func engineNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
