package uses

import (
	legacy "legacy/marked"
	"marked"
)

func Run(s marked.Settings) string {
	return s.First()
}

func Render(t marked.Table) int { // want `'t' is ReadonlyShallow, required Immutable`
	return len(t.Rows)
}

func Migrate(s legacy.Settings) int { // want `'s' is ReadonlyShallow, required Immutable`
	return len(s.Names)
}
