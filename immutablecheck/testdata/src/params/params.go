package params

import "time"

type point struct {
	X, Y int
}

// @immutable
type Immtbl struct { // want Immtbl:"immutable"
	Num int
	Arr []int
	Map map[string]int
}

type holder struct {
	Items []string
}

type Sink interface {
	Put(buf []byte) // want `parameter-not-immutable`
	Close() error
}

func Sum(xs []int) int { // want `error\[parameter-not-immutable\]: Parameter should have an immutability of at least "Immutable" \(actual: "Mutable"\)`
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func Len(s string) int {
	return len(s)
}

func Dist(p point, q [2]point) int {
	return p.X - q[0].X
}

func ReadNum(s Immtbl) int {
	return s.Num
}

func MutateNum(s *Immtbl) { // want `'s' is Mutable, required Immutable`
	s.Num = 1
}

func Hold(h holder) int { // want `'h' is ReadonlyShallow, required Immutable`
	return len(h.Items)
}

func Lookup(m map[string]int, k string) int { // want `parameter-not-immutable`
	return m[k]
}

func Since(t time.Time, d time.Duration) bool {
	return time.Since(t) > d
}

func Apply(f func(int) int, err error) int {
	if err != nil {
		return 0
	}
	return f(1)
}

func Anything(v any) any { // want `Part of the type could not be resolved`
	return v
}

func Send(ch chan<- int) { // want `parameter-not-immutable`
	ch <- 1
}

func Allowed(xs []int) { //@allow-mutate
	xs[0] = 1
}

func (h holder) Append(more []string) holder { // want `parameter-not-immutable`
	return holder{Items: append(h.Items, more...)}
}

var Reset = func(buf []byte) { // want `parameter-not-immutable`
	clear(buf)
}
