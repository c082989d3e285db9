package layer

// Problem is the stacking problem of one folded model: the seeded relation
// and the constraints every solution must satisfy.
type Problem struct {
	Seed       *Relation
	Conditions []Condition
	// Consistent is false when the creases alone already contradict each other.
	Consistent bool

	index map[int][]int // pair key -> conditions reading it
}

// NewProblemFromParts assembles a problem from a seed and its conditions.
func NewProblemFromParts(seed *Relation, conds []Condition, consistent bool) *Problem {
	p := &Problem{Seed: seed, Conditions: conds, Consistent: consistent}
	p.index = make(map[int][]int)
	for c, cond := range conds {
		for _, pr := range cond.Pairs() {
			k := p.key(pr)
			p.index[k] = append(p.index[k], c)
		}
	}
	return p
}

func (p *Problem) key(pr Pair) int { return pr.I*p.Seed.Size() + pr.J }

// overlay reads through to a relation except for a handful of trial values.
type overlay struct {
	base  *Relation
	pairs []Pair
	vals  []Order
}

func (o *overlay) Get(i, j int) Order {
	for k, p := range o.pairs {
		if p.I == i && p.J == j {
			return o.vals[k]
		}
		if p.I == j && p.J == i {
			return o.vals[k].Inverse()
		}
	}
	return o.base.Get(i, j)
}

// propagate fixes every pair whose value is forced by some condition, until
// nothing changes. Only conditions touching changed pairs are revisited; a nil
// changed list visits all of them. It returns false on a contradiction.
func (p *Problem) propagate(r *Relation, changed []Pair) bool {
	queued := make([]bool, len(p.Conditions))
	var queue []int
	push := func(c int) {
		if !queued[c] {
			queued[c] = true
			queue = append(queue, c)
		}
	}
	if changed == nil {
		for c := range p.Conditions {
			push(c)
		}
	}
	for _, pr := range changed {
		for _, c := range p.index[p.key(pr)] {
			push(c)
		}
	}

	ov := &overlay{base: r}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		queued[c] = false
		cond := p.Conditions[c]

		ov.pairs = ov.pairs[:0]
		for _, pr := range cond.Pairs() {
			if r.IsUndefined(pr.I, pr.J) {
				ov.pairs = append(ov.pairs, pr)
			}
		}
		if len(ov.pairs) == 0 {
			if !cond.Holds(r) {
				return false
			}
			continue
		}

		// try every assignment of the open pairs
		k := len(ov.pairs)
		ov.vals = ov.vals[:0]
		for range k {
			ov.vals = append(ov.vals, Upper)
		}
		valid := 0
		var first, agree uint
		for mask := uint(0); mask < 1<<k; mask++ {
			for b := range k {
				if mask&(1<<b) != 0 {
					ov.vals[b] = Upper
				} else {
					ov.vals[b] = Lower
				}
			}
			if !cond.Holds(ov) {
				continue
			}
			if valid == 0 {
				first, agree = mask, 1<<k-1
			} else {
				agree &^= mask ^ first
			}
			valid++
		}
		if valid == 0 {
			return false
		}

		forced := append([]Pair(nil), ov.pairs...)
		for b, pr := range forced {
			if agree&(1<<b) == 0 {
				continue
			}
			o := Lower
			if first&(1<<b) != 0 {
				o = Upper
			}
			r.Set(pr.I, pr.J, o)
			for _, d := range p.index[p.key(pr)] {
				push(d)
			}
		}
	}
	return true
}

// holdsAll reports whether every condition is satisfied by a complete relation.
func (p *Problem) holdsAll(r *Relation, conds []int) bool {
	for _, c := range conds {
		if !p.Conditions[c].Holds(r) {
			return false
		}
	}
	return true
}
