// Package immutability classifies type expressions on the lattice
// Mutable < ReadonlyShallow < ReadonlyDeep < Immutable.
//
// # Overview
//
// A Classifier walks a typenode graph bottom-up. Leaves (primitives,
// literals, functions) are Immutable; containers start at Mutable or
// ReadonlyShallow depending on their readonly qualifier and escalate when
// every element is at least ReadonlyDeep. Unions take the weakest member,
// intersections the strictest. Named references consult the override
// Registry before being resolved through a typenode.Resolver.
//
// # Cycles
//
// A reference that is already being classified higher up the stack is
// assumed Immutable. Self-referential declarations therefore terminate, at
// the price of under-reporting recursive structures that are mutable only
// through the cycle.
package immutability

import (
	"errors"
	"fmt"
	"strings"
)

// Level is a position on the immutability lattice.
type Level int

const (
	Mutable Level = iota
	ReadonlyShallow
	ReadonlyDeep
	Immutable
)

var levelNames = [...]string{
	Mutable:         "Mutable",
	ReadonlyShallow: "ReadonlyShallow",
	ReadonlyDeep:    "ReadonlyDeep",
	Immutable:       "Immutable",
}

// ErrUnknownLevel is returned when parsing a name that is not a level.
var ErrUnknownLevel = errors.New("unknown immutability level")

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{Mutable, ReadonlyShallow, ReadonlyDeep, Immutable}
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the four levels.
func (l Level) Valid() bool { return l >= Mutable && l <= Immutable }

// ParseLevel parses a level name, ignoring case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Level(i), nil
		}
	}
	return Mutable, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Min returns the weaker of a and b.
func Min(a, b Level) Level {
	if a < b {
		return a
	}
	return b
}

// Max returns the stricter of a and b.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}
