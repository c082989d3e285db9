package layer

import (
	"context"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/model"
	"github.com/piwi3910/CreaseStack/internal/parallel"
)

// Status is the outcome of a stacking search.
type Status int

const (
	Solved         Status = iota // at least one consistent order
	Unsolvable                   // every branch failed
	BudgetExceeded               // stopped by the step budget or the deadline
)

func (s Status) String() string {
	switch s {
	case Solved:
		return "solved"
	case Unsolvable:
		return "unsolvable"
	case BudgetExceeded:
		return "budget exceeded"
	}
	return "unknown"
}

// Options controls the search.
type Options struct {
	FullEstimation bool          // enumerate every solution instead of stopping at the first
	MaxSolutions   int           // relations kept per cluster and overall; counting continues past it
	StepBudget     int64         // search nodes per cluster, 0 for unlimited
	Timeout        time.Duration // wall clock for the whole solve, 0 for none
	Workers        int           // used when Pool is nil
	Pool           *parallel.WorkerPool

	reverse bool // submit clusters last to first
}

// OptionsFromSettings maps fold settings onto solver options.
func OptionsFromSettings(s model.FoldSettings) Options {
	return Options{
		FullEstimation: s.FullEstimation,
		MaxSolutions:   s.MaxSolutions,
		StepBudget:     int64(s.SearchStepBudget),
		Timeout:        s.SearchTimeout(),
		Workers:        s.Workers,
	}
}

// ClusterResult is the outcome for one group of interdependent open pairs.
type ClusterResult struct {
	Pairs    []Pair `json:"pairs"`
	Status   Status `json:"status"`
	Count    int64  `json:"count"`
	Steps    int64  `json:"steps"`
	Capped   bool   `json:"capped"`
	TimedOut bool   `json:"timed_out"`

	solutions [][]Order // values for Pairs, one slice per kept solution
}

// Result is the outcome of Solve. Relations are complete: no pair is left
// Undefined. Count saturates at math.MaxInt64.
type Result struct {
	Status    Status          `json:"status"`
	Count     int64           `json:"count"`
	Relations []*Relation     `json:"-"`
	Clusters  []ClusterResult `json:"clusters"`
	Capped    bool            `json:"capped"`
	TimedOut  bool            `json:"timed_out"`
}

// Solve searches for face orders consistent with the problem. Expected
// outcomes, including unsolvable patterns and exhausted budgets, are
// reported through Result.Status.
func Solve(ctx context.Context, p *Problem, opts Options) *Result {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if opts.MaxSolutions <= 0 {
		opts.MaxSolutions = 1
	}

	base := p.Seed.Clone()
	if !p.Consistent || !p.propagate(base, nil) {
		logging.Logger().Debug("stacking contradicts crease seeds")
		return &Result{Status: Unsolvable}
	}

	clusters := p.clusters(base)
	results := make([]ClusterResult, len(clusters))

	pool := opts.Pool
	if pool == nil {
		pool = parallel.NewWorkerPool(opts.Workers)
		defer pool.Close()
	}
	pool.ForEach(len(clusters), func(k int) {
		if opts.reverse {
			k = len(clusters) - 1 - k
		}
		results[k] = p.search(ctx, base, clusters[k], opts)
	})

	res := combine(base, results, opts.MaxSolutions)
	logging.Logger().Debug("stacking solved",
		"clusters", len(clusters),
		"steps", lo.SumBy(results, func(c ClusterResult) int64 { return c.Steps }),
		"status", res.Status.String(), "count", res.Count)
	if res.Status == BudgetExceeded {
		logging.Logger().Warn("stacking search stopped early", "timed_out", res.TimedOut)
	}
	return res
}

// cluster is a set of open pairs and the conditions linking them.
type cluster struct {
	pairs []Pair
	conds []int
}

// clusters groups open pairs that share a condition. Groups are ordered by
// their first pair.
func (p *Problem) clusters(r *Relation) []cluster {
	open := r.Pairs(Undefined)
	if len(open) == 0 {
		return nil
	}
	id := make(map[int]int, len(open))
	for i, pr := range open {
		id[p.key(pr)] = i
	}
	parent := make([]int, len(open))
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		a, b = find(a), find(b)
		if a == b {
			return
		}
		if a < b {
			parent[b] = a
		} else {
			parent[a] = b
		}
	}

	condRoot := make([]int, len(p.Conditions))
	for c, cond := range p.Conditions {
		condRoot[c] = -1
		for _, pr := range cond.Pairs() {
			i, ok := id[p.key(pr)]
			if !ok {
				continue
			}
			if condRoot[c] < 0 {
				condRoot[c] = i
			} else {
				union(condRoot[c], i)
			}
		}
	}

	groupOf := make(map[int]int)
	var out []cluster
	for i, pr := range open {
		root := find(i)
		g, ok := groupOf[root]
		if !ok {
			g = len(out)
			groupOf[root] = g
			out = append(out, cluster{})
		}
		out[g].pairs = append(out[g].pairs, pr)
	}
	for c, root := range condRoot {
		if root >= 0 {
			g := groupOf[find(root)]
			out[g].conds = append(out[g].conds, c)
		}
	}
	return out
}

// search runs a depth-first search over one cluster on an explicit stack of
// partial relations. Upper is tried before Lower.
func (p *Problem) search(ctx context.Context, base *Relation, c cluster, opts Options) ClusterResult {
	res := ClusterResult{Pairs: c.pairs, Status: Unsolvable}
	stack := []*Relation{base}
	for len(stack) > 0 {
		if opts.StepBudget > 0 && res.Steps >= opts.StepBudget {
			res.Status = BudgetExceeded
			break
		}
		if res.Steps%256 == 0 && ctx.Err() != nil {
			res.Status = BudgetExceeded
			res.TimedOut = true
			break
		}
		res.Steps++

		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next := -1
		for i, pr := range c.pairs {
			if r.IsUndefined(pr.I, pr.J) {
				next = i
				break
			}
		}
		if next < 0 {
			if !p.holdsAll(r, c.conds) {
				continue
			}
			res.Count = satAdd(res.Count, 1)
			if len(res.solutions) < opts.MaxSolutions {
				vals := make([]Order, len(c.pairs))
				for i, pr := range c.pairs {
					vals[i] = r.Get(pr.I, pr.J)
				}
				res.solutions = append(res.solutions, vals)
			} else {
				res.Capped = true
			}
			if !opts.FullEstimation {
				break
			}
			continue
		}

		pr := c.pairs[next]
		for _, o := range []Order{Lower, Upper} {
			child := r.Clone()
			child.Set(pr.I, pr.J, o)
			if p.propagate(child, []Pair{pr}) {
				stack = append(stack, child)
			}
		}
	}
	if res.Count > 0 && res.Status == Unsolvable {
		res.Status = Solved
	}
	return res
}

// combine merges per-cluster outcomes. Counts multiply; relations are the
// Cartesian product of kept cluster solutions, capped at limit.
func combine(base *Relation, clusters []ClusterResult, limit int) *Result {
	res := &Result{Status: Solved, Count: 1, Clusters: clusters}
	allFound := true
	for _, c := range clusters {
		res.Capped = res.Capped || c.Capped
		res.TimedOut = res.TimedOut || c.TimedOut
		switch c.Status {
		case Unsolvable:
			res.Status, res.Count = Unsolvable, 0
			return res
		case BudgetExceeded:
			res.Status = BudgetExceeded
		}
		if len(c.solutions) == 0 {
			allFound = false
		}
		res.Count = satMul(res.Count, c.Count)
	}
	if !allFound {
		return res
	}

	idx := make([]int, len(clusters))
	for {
		r := base.Clone()
		for k, c := range clusters {
			for i, pr := range c.Pairs {
				r.Set(pr.I, pr.J, c.solutions[idx[k]][i])
			}
		}
		res.Relations = append(res.Relations, r)
		if len(res.Relations) >= limit {
			if int64(len(res.Relations)) < res.Count {
				res.Capped = true
			}
			break
		}
		// advance the last cluster fastest
		k := len(clusters) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(clusters[k].solutions) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			break
		}
	}
	return res
}

func satAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func satMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}
