package scape

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"plegma/internal/learn"
)

// Builder constructs a fresh environment with default parameters.
type Builder func() (learn.Environment, error)

var builders = map[string]Builder{
	"sticks": func() (learn.Environment, error) {
		return NewSticks(1)
	},
	"sticks-duel": func() (learn.Environment, error) {
		return NewSticks(2)
	},
	"parity": func() (learn.Environment, error) {
		return NewParity(8, 64)
	},
}

// Names lists the registered environments in sorted order.
func Names() []string {
	names := maps.Keys(builders)
	slices.Sort(names)
	return names
}

// New builds the named environment.
func New(name string) (learn.Environment, error) {
	builder, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q (known: %v)", name, Names())
	}
	return builder()
}
