// Package tsfront reads TypeScript sources with tree-sitter and turns their
// declarations into enforcement targets.
//
// A File is fully extracted while its syntax tree is alive, so a File holds
// no tree-sitter state and may outlive the parser that produced it.
package tsfront

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/typenode"
)

var (
	// ErrUnavailable is returned by builds without cgo, which cannot link
	// the tree-sitter runtime.
	ErrUnavailable = errors.New("typescript frontend requires cgo")
	// ErrFileTooLarge is returned for sources above the parser's limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidContent is returned for sources that are not UTF-8.
	ErrInvalidContent = errors.New("invalid content")
	// ErrType is returned by ParseType when the text is not a type.
	ErrType = errors.New("not a type expression")
)

// DefaultMaxFileSize bounds the sources Parse accepts.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Extensions are the file extensions the frontend reads.
func Extensions() []string { return []string{".ts", ".tsx", ".mts", ".cts"} }

// IsSource reports whether path is a TypeScript source worth checking.
// Declaration files are skipped.
func IsSource(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, suffix) {
			return false
		}
	}
	ext := filepath.Ext(base)
	for _, e := range Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// File is one parsed source file.
type File struct {
	Path   string
	Source []byte
	// SyntaxErrors is set when tree-sitter had to recover from errors.
	// Targets inside broken regions may be missing.
	SyntaxErrors bool

	targets  []enforce.Target
	resolver typenode.Declarations
}

// Targets returns the declarations to check, in source order.
func (f *File) Targets() []enforce.Target { return f.targets }

// Resolver resolves type names declared in the file.
func (f *File) Resolver() typenode.Resolver { return f.resolver }

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the largest source Parse accepts.
func WithMaxFileSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxFileSize = n
		}
	}
}

func newParser(opts []Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parser parses TypeScript files. It is safe for concurrent use: every call
// creates its own tree-sitter parser.
type Parser struct {
	maxFileSize int
}

// NewParser returns a parser.
func NewParser(opts ...Option) *Parser { return newParser(opts) }
