package immutablecheck

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frroossst/readonlylint/internal/logging"
)

// SetLogDestination routes the analyzer's log. "" silences it, "stderr"
// writes to standard error and anything else is a file appended to.
func SetLogDestination(dest string) {
	logging.SetDestination(dest)
}

// format is json like
func describeMarkers(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var sb strings.Builder
	sb.WriteString("{")
	for i, name := range sorted {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf(" %q: %q", name, "Immutable"))
	}
	sb.WriteString(" }")
	return sb.String()
}
