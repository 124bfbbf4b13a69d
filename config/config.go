// Package config is the on-disk configuration of readonlylint and its
// compilation into the analysis engines.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/ignore"
)

// File is a configuration document. Per-position settings fall back to the
// top-level ones.
type File struct {
	Enforcement         string `json:"enforcement,omitempty" yaml:"enforcement,omitempty" toml:"enforcement,omitempty" validate:"omitempty,enforcement"`
	IgnoreInferredTypes bool   `json:"ignoreInferredTypes,omitempty" yaml:"ignoreInferredTypes,omitempty" toml:"ignoreInferredTypes,omitempty"`
	IgnoreCollections   bool   `json:"ignoreCollections,omitempty" yaml:"ignoreCollections,omitempty" toml:"ignoreCollections,omitempty"`

	Parameters  *Position `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty"`
	ReturnTypes *Position `json:"returnTypes,omitempty" yaml:"returnTypes,omitempty" toml:"returnTypes,omitempty"`
	Variables   *Position `json:"variables,omitempty" yaml:"variables,omitempty" toml:"variables,omitempty"`
	Properties  *Position `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`

	Ignore    Ignore            `json:"ignore" yaml:"ignore" toml:"ignore"`
	Overrides []Override        `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty" validate:"dive"`
	Wrappers  map[string]string `json:"wrappers,omitempty" yaml:"wrappers,omitempty" toml:"wrappers,omitempty" validate:"dive,keys,required,endkeys,oneof=shallow deep"`

	Fixer       map[string][]fixer.Pattern   `json:"fixer,omitempty" yaml:"fixer,omitempty" toml:"fixer,omitempty" validate:"dive,keys,level,endkeys,dive"`
	Suggestions map[string][][]fixer.Pattern `json:"suggestions,omitempty" yaml:"suggestions,omitempty" toml:"suggestions,omitempty" validate:"dive,keys,level,endkeys,dive,dive"`
}

// Position overrides the top-level policy for one position.
type Position struct {
	Enforcement         string `json:"enforcement,omitempty" yaml:"enforcement,omitempty" toml:"enforcement,omitempty" validate:"omitempty,enforcement"`
	IgnoreInferredTypes *bool  `json:"ignoreInferredTypes,omitempty" yaml:"ignoreInferredTypes,omitempty" toml:"ignoreInferredTypes,omitempty"`
	IgnoreCollections   *bool  `json:"ignoreCollections,omitempty" yaml:"ignoreCollections,omitempty" toml:"ignoreCollections,omitempty"`
}

// Ignore holds the exemption settings.
type Ignore struct {
	Classes            ClassSetting `json:"classes" yaml:"classes" toml:"classes"`
	Interfaces         bool         `json:"interfaces,omitempty" yaml:"interfaces,omitempty" toml:"interfaces,omitempty"`
	AllowLocalMutation bool         `json:"allowLocalMutation,omitempty" yaml:"allowLocalMutation,omitempty" toml:"allowLocalMutation,omitempty"`
	Patterns           []string     `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty" validate:"dive,required"`
}

// Override forces a level, or "Calculate", for type names matching Pattern.
type Override struct {
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern" validate:"required"`
	Level   string `json:"level" yaml:"level" toml:"level" validate:"required,override_level"`
}

// ClassSetting is written as a boolean or as "fieldsOnly".
type ClassSetting ignore.ClassMode

func (c ClassSetting) Mode() ignore.ClassMode { return ignore.ClassMode(c) }

func (c ClassSetting) value() any {
	switch ignore.ClassMode(c) {
	case ignore.ClassesAll:
		return true
	case ignore.ClassesFieldsOnly:
		return "fieldsOnly"
	default:
		return false
	}
}

func (c *ClassSetting) set(v any) error {
	mode, err := ignore.ParseClassMode(v)
	if err != nil {
		return err
	}
	*c = ClassSetting(mode)
	return nil
}

func (c ClassSetting) MarshalJSON() ([]byte, error) { return json.Marshal(c.value()) }

func (c *ClassSetting) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return c.set(v)
}

func (c ClassSetting) MarshalYAML() (any, error) { return c.value(), nil }

func (c *ClassSetting) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return c.set(v)
}

func (c ClassSetting) MarshalTOML() ([]byte, error) {
	if s, ok := c.value().(string); ok {
		return []byte(`"` + s + `"`), nil
	}
	return []byte(fmt.Sprint(c.value())), nil
}

func (c *ClassSetting) UnmarshalTOML(v any) error { return c.set(v) }

// Default returns the configuration used when no file is found: Immutable
// required everywhere, nothing ignored.
func Default() *File {
	return &File{Enforcement: "Immutable"}
}

// ErrSchema marks a document that does not match the configuration schema.
var ErrSchema = errors.New("does not match schema")

// Error is a configuration problem, located by file and field where known.
type Error struct {
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("config")
	if e.Path != "" {
		sb.WriteString(" " + e.Path)
	}
	if e.Field != "" {
		sb.WriteString(": field " + e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }
