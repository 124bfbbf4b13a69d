package marked

// @immutable
type Settings struct {
	Names []string
}

type Table struct {
	Rows [][]string
}

func (s Settings) First() string {
	return s.Names[0]
}
