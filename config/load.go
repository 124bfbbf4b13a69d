package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/immutability"
)

//go:embed schema.json
var schemaJSON string

var schema = gojsonschema.NewStringLoader(schemaJSON)

// Format is a configuration file syntax.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// ErrFormat is returned for unsupported syntaxes.
var ErrFormat = errors.New("unsupported config format")

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// FileNames are the names searched for by Discover, in order.
var FileNames = []string{".readonlylint.yaml", ".readonlylint.yml", ".readonlylint.toml", ".readonlylint.json"}

// Discover walks from dir towards the root and returns the first
// configuration file found, or "".
func Discover(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads and validates the configuration file at path. The syntax is
// chosen by extension.
func Load(path string) (*File, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, withPath(err, path)
	}
	return f, nil
}

// withPath records path on every configuration error in err, including
// each member of a joined error.
func withPath(err error, path string) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			var cerr *Error
			if errors.As(e, &cerr) && cerr.Path == "" {
				cerr.Path = path
			}
		}
		return err
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		if cerr.Path == "" {
			cerr.Path = path
		}
		return err
	}
	return &Error{Path: path, Err: err}
}

// Parse decodes and validates a configuration document.
func Parse(data []byte, format Format) (*File, error) {
	generic, err := decodeGeneric(data, format)
	if err != nil {
		return nil, &Error{Err: err}
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	f := &File{}
	if err := decodeTyped(data, format, f); err != nil {
		return nil, &Error{Err: err}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeGeneric(data []byte, format Format) (any, error) {
	doc := map[string]any{}
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case TOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, err
		}
	case JSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return doc, nil
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	return doc, nil
}

func decodeTyped(data []byte, format Format, f *File) error {
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case TOML:
		_, err := toml.Decode(string(data), f)
		return err
	case JSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(f)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}

func validateSchema(doc any) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &Error{Err: fmt.Errorf("schema: %w", err)}
	}
	if result.Valid() {
		return nil
	}
	var errs []error
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = ""
		}
		errs = append(errs, &Error{Field: field, Err: fmt.Errorf("%w: %s", ErrSchema, desc.Description())})
	}
	return errors.Join(errs...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		_, err := immutability.ParseLevel(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("enforcement", func(fl validator.FieldLevel) bool {
		_, err := enforce.ParseEnforcement(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("override_level", func(fl validator.FieldLevel) bool {
		_, _, err := parseOverrideLevel(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field values. Documents built in code, such as decoded
// golangci-lint settings, skip the schema and rely on this alone.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Err: err}
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &Error{
			Field: strings.TrimPrefix(fe.Namespace(), "File."),
			Err:   fmt.Errorf("value %v fails %q", fe.Value(), fe.Tag()),
		})
	}
	return errors.Join(errs...)
}

// Encode writes f in the given syntax.
func Encode(w io.Writer, f *File, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(f)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}
