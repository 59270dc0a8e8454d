// internal/vfd/registry.go
package vfd

import (
	"fmt"
	"sort"

	"github.com/mdouchement/logger"
)

// builders maps the configured hardware model name to its constructor.
var builders = map[string]func(logger.Logger) Driver{}

// register adds a driver constructor under its model name.
// Called from driver init functions only.
func register(model string, build func(logger.Logger) Driver) {
	builders[model] = build
}

// New builds the driver registered under the given model name.
func New(model string, log logger.Logger) (Driver, error) {
	build, ok := builders[model]
	if !ok {
		return nil, fmt.Errorf("vfd: unknown model %q (known: %v)", model, Models())
	}
	return build(log), nil
}

// Registered reports whether a driver exists for the given model name.
func Registered(model string) bool {
	_, ok := builders[model]
	return ok
}

// Models lists the registered model names, sorted.
func Models() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
