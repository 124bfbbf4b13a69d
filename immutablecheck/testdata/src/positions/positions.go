package positions

type Store struct {
	Items []string // want `mutable-collection-type`
	Count int
	Next  *Store // want `missing-readonly-qualifier`
	Tags  [4]string
}

var registry = map[string]int{} // want `implicit-mutable-inference`

var limit int = 10

func (s Store) All() []string { // want `return-type-too-mutable`
	return s.Items
}

func (s Store) Size() int {
	return s.Count
}

func Names(s Store) int {
	names := []string{"a"} // want `implicit-mutable-inference`
	var total int
	for range names {
		total++
	}
	return total + len(s.Tags) + limit + registry["x"]
}

func Fill(dst []string) { // want `parameter-not-immutable`
	copy(dst, []string{"a"})
}
