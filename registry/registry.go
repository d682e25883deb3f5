// Package registry maps processor type names to constructors. Built-in
// processors register themselves at init() time, mirroring the way the
// teacher registers its built-in step kinds before the server ever
// dispatches a request. A secondary, mutex-guarded external registry
// backs the dotted-name fallback described in MiniDP's design notes: Go
// has no runtime import-by-string, so a dotted type name is looked up
// verbatim in whatever an embedding program registered at its own
// init() time, rather than dynamically resolved.
package registry

import (
	"strings"
	"sync"

	"minidp/errors"
	"minidp/processor"
)

// Constructor builds a processor instance from its params.
type Constructor func(params map[string]any) (processor.Processor, error)

var (
	mu       sync.Mutex
	builtins = map[string]Constructor{}
	external = map[string]Constructor{}
)

// Register adds a built-in constructor under name. Intended to be called
// from built-in processors' init() functions.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	builtins[name] = ctor
}

// RegisterExternal adds a constructor to the secondary registry consulted
// when a step's type contains a dot. Embedding programs call this at
// their own init() time to extend MiniDP with custom processors.
func RegisterExternal(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	external[name] = ctor
}

// Names returns every registered name (built-in first, then external),
// for the "list-processors" CLI command.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(builtins)+len(external))
	for n := range builtins {
		out = append(out, n)
	}
	for n := range external {
		out = append(out, n)
	}
	return out
}

// Resolve implements the lookup algorithm from the processor registry
// contract: a registered short name wins; otherwise, if the type string
// contains a dot, it is looked up verbatim in the external registry;
// otherwise resolution fails.
func Resolve(typ string) (Constructor, error) {
	mu.Lock()
	ctor, ok := builtins[typ]
	mu.Unlock()
	if ok {
		return ctor, nil
	}

	if strings.Contains(typ, ".") {
		mu.Lock()
		ctor, ok := external[typ]
		mu.Unlock()
		if ok {
			return ctor, nil
		}
	}

	return nil, &errors.UnknownProcessorError{Type: typ}
}

// Construct resolves typ and constructs a processor from params, wrapping
// constructor failures in ProcessorConstructionError.
func Construct(typ string, params map[string]any) (processor.Processor, error) {
	ctor, err := Resolve(typ)
	if err != nil {
		return nil, err
	}
	p, err := ctor(params)
	if err != nil {
		if _, already := err.(*errors.ProcessorConstructionError); already {
			return nil, err
		}
		return nil, &errors.ProcessorConstructionError{Processor: typ, Reason: err.Error()}
	}
	return p, nil
}
