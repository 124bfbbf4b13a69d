package enforce

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frroossst/readonlylint/immutability"
)

// Position is the syntactic place a declaration's type appears in.
type Position int

const (
	Parameter Position = iota
	ReturnType
	Variable
	Property
)

var positionNames = [...]string{
	Parameter:  "parameters",
	ReturnType: "returnTypes",
	Variable:   "variables",
	Property:   "properties",
}

// ErrUnknownPosition is returned when parsing a name that is not a position.
var ErrUnknownPosition = errors.New("unknown position")

// Positions returns every position in declaration order.
func Positions() []Position { return []Position{Parameter, ReturnType, Variable, Property} }

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// ParsePosition parses the configuration key of a position.
func ParsePosition(s string) (Position, error) {
	for i, name := range positionNames {
		if strings.EqualFold(s, name) {
			return Position(i), nil
		}
	}
	return Parameter, fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Enforcement is a required level, or Off.
type Enforcement struct {
	Off   bool
	Level immutability.Level
}

// Disabled turns enforcement off for a position.
var Disabled = Enforcement{Off: true}

// Require returns an enforcement of at least level.
func Require(level immutability.Level) Enforcement { return Enforcement{Level: level} }

// ParseEnforcement accepts a level name, or "Off" / "None".
func ParseEnforcement(s string) (Enforcement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return Disabled, nil
	}
	level, err := immutability.ParseLevel(s)
	if err != nil {
		return Disabled, err
	}
	return Require(level), nil
}

func (e Enforcement) String() string {
	if e.Off {
		return "Off"
	}
	return e.Level.String()
}

func (e Enforcement) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Enforcement) UnmarshalText(text []byte) error {
	parsed, err := ParseEnforcement(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// PositionConfig is the policy for one position.
type PositionConfig struct {
	Required            Enforcement
	IgnoreInferredTypes bool
	IgnoreCollections   bool
}

// Config is the policy for every position. Positions without an entry are
// off.
type Config struct {
	Positions map[Position]PositionConfig
}

// For returns the policy of p.
func (c Config) For(p Position) PositionConfig {
	pc, ok := c.Positions[p]
	if !ok {
		return PositionConfig{Required: Disabled}
	}
	return pc
}

// Uniform returns a config applying pc to every position.
func Uniform(pc PositionConfig) Config {
	c := Config{Positions: make(map[Position]PositionConfig, len(positionNames))}
	for _, p := range Positions() {
		c.Positions[p] = pc
	}
	return c
}

// DefaultConfig requires Immutable everywhere.
func DefaultConfig() Config {
	return Uniform(PositionConfig{Required: Require(immutability.Immutable)})
}
