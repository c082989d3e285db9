// Package layer solves the layer ordering of a folded model: which face
// lies above which wherever two faces overlap.
package layer

import "fmt"

// Order is the relation between an ordered face pair (i, j).
type Order int8

const (
	NoOverlap Order = iota // faces never share area
	Upper                  // face i lies above face j
	Lower                  // face i lies below face j
	Undefined              // faces overlap, order not fixed yet
)

func (o Order) String() string {
	switch o {
	case NoOverlap:
		return "NoOverlap"
	case Upper:
		return "Upper"
	case Lower:
		return "Lower"
	default:
		return "Undefined"
	}
}

// Inverse returns the order seen from the other face.
func (o Order) Inverse() Order {
	switch o {
	case Upper:
		return Lower
	case Lower:
		return Upper
	}
	return o
}

// Relation is a square face-pair relation. Writing (i, j) also writes the
// inverse at (j, i), so the two lookups always agree.
type Relation struct {
	n int
	v []Order
}

// NewRelation returns a relation over n faces with no overlaps.
func NewRelation(n int) *Relation {
	return &Relation{n: n, v: make([]Order, n*n)}
}

// Size returns the number of faces.
func (r *Relation) Size() int { return r.n }

func (r *Relation) Get(i, j int) Order { return r.v[i*r.n+j] }

// Set stores o for (i, j) and its inverse for (j, i).
func (r *Relation) Set(i, j int, o Order) {
	r.v[i*r.n+j] = o
	r.v[j*r.n+i] = o.Inverse()
}

func (r *Relation) IsUpper(i, j int) bool     { return r.Get(i, j) == Upper }
func (r *Relation) IsLower(i, j int) bool     { return r.Get(i, j) == Lower }
func (r *Relation) IsUndefined(i, j int) bool { return r.Get(i, j) == Undefined }

// Fix moves an undefined pair to o. It reports whether the pair changed and
// whether the new value is consistent with what was already stored.
func (r *Relation) Fix(i, j int, o Order) (changed, ok bool) {
	switch cur := r.Get(i, j); cur {
	case Undefined:
		r.Set(i, j, o)
		return true, true
	case o:
		return false, true
	default:
		return false, false
	}
}

// Clone returns an independent copy.
func (r *Relation) Clone() *Relation {
	c := &Relation{n: r.n, v: make([]Order, len(r.v))}
	copy(c.v, r.v)
	return c
}

// CopyFrom overwrites r with the values of o for the given pairs.
func (r *Relation) CopyFrom(o *Relation, pairs []Pair) {
	for _, p := range pairs {
		r.Set(p.I, p.J, o.Get(p.I, p.J))
	}
}

// Equal reports whether both relations hold the same values.
func (r *Relation) Equal(o *Relation) bool {
	if r.n != o.n {
		return false
	}
	for k := range r.v {
		if r.v[k] != o.v[k] {
			return false
		}
	}
	return true
}

// Pairs returns the pairs i < j currently holding the given order.
func (r *Relation) Pairs(o Order) []Pair {
	var out []Pair
	for i := 0; i < r.n; i++ {
		for j := i + 1; j < r.n; j++ {
			if r.Get(i, j) == o {
				out = append(out, Pair{I: i, J: j})
			}
		}
	}
	return out
}

// Pair is a face pair with I < J.
type Pair struct {
	I, J int
}

// NewPair orders the two faces.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{I: a, J: b}
}

func (p Pair) String() string { return fmt.Sprintf("(%d,%d)", p.I, p.J) }
