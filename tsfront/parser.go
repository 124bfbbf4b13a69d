//go:build cgo

package tsfront

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/frroossst/readonlylint/typenode"
)

func language(path string) *sitter.Language {
	if strings.HasSuffix(path, ".tsx") {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

func parseTree(ctx context.Context, src []byte, path string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(language(path))
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return tree, nil
}

// Parse reads one source file. Syntax errors do not fail the parse;
// tree-sitter recovers and the File reports them.
func (p *Parser) Parse(ctx context.Context, src []byte, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if len(src) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(src), p.maxFileSize)
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	tree, err := parseTree(ctx, src, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	x := &extractor{src: src}
	f := &File{Path: path, Source: src, SyntaxErrors: root.HasError()}
	f.resolver = x.declarations(root)

	c := &collector{extractor: x, path: path, resolver: f.resolver}
	c.visit(root, frame{})
	f.targets = c.targets
	return f, nil
}

const typePrefix = "type __readonlylint_subject = "

// ParseType parses a standalone type expression. The resolver knows no
// names, so references to anything but built-in collections are uncertain.
func (p *Parser) ParseType(ctx context.Context, text string) (typenode.Node, typenode.Resolver, error) {
	src := []byte(typePrefix + text + ";\n")
	tree, err := parseTree(ctx, src, "type.ts")
	if err != nil {
		return nil, nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	decl := root.NamedChild(0)
	if root.HasError() || decl == nil || decl.Type() != "type_alias_declaration" {
		return nil, nil, fmt.Errorf("%w: %q", ErrType, text)
	}
	x := &extractor{src: src, base: len(typePrefix)}
	return x.typ(decl.ChildByFieldName("value")), typenode.Declarations{}, nil
}
