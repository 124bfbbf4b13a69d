//go:build !cgo

package tsfront

import (
	"context"

	"github.com/frroossst/readonlylint/typenode"
)

// Parse is unavailable without cgo.
func (p *Parser) Parse(ctx context.Context, src []byte, path string) (*File, error) {
	return nil, ErrUnavailable
}

// ParseType is unavailable without cgo.
func (p *Parser) ParseType(ctx context.Context, text string) (typenode.Node, typenode.Resolver, error) {
	return nil, nil, ErrUnavailable
}
