package hnsw

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/topk"
)

// ErrEmptyIndex is returned when building from an empty dataset.
var ErrEmptyIndex = errors.New("hnsw: empty dataset")

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("hnsw: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Options represents the options for configuring HNSW.
type Options struct {
	// M specifies the number of established connections for every new element during construction.
	// The range M=12-48 is ok for most use cases. Layer 0 keeps up to 2*M links.
	M int

	// EfConstruction is the size of the dynamic candidate list while linking.
	EfConstruction int

	// EfSearch is the candidate list size used when Search gets no effort.
	EfSearch int

	// Heuristic selects diverse neighbours (true) instead of the plain nearest M (false).
	Heuristic bool

	// Seed drives level assignment.
	Seed uint64
}

// DefaultOptions are used by Build before applying option functions.
var DefaultOptions = Options{
	M:              16,
	EfConstruction: 200,
	EfSearch:       64,
	Heuristic:      true,
	Seed:           42,
}

// Index is an immutable HNSW graph over a dataset.
type Index struct {
	dim    int
	metric distance.Metric
	dist   distance.Func
	opts   Options

	mmax  int     // Max connections per node on upper layers
	mmax0 int     // Max connections on layer 0
	ml    float64 // Normalization factor for level generation

	ids     []uint32     // node -> dataset identifier
	vectors []float32    // node vectors, flat
	links   [][][]uint32 // node -> layer -> neighbours

	ep       uint32 // entry point
	maxLevel int

	scratch sync.Pool // *searchScratch
}

type searchScratch struct {
	visited    *bitset.BitSet
	candidates queue
	results    queue
}

// Build inserts every vector of ds, in dataset order, into a new graph.
func Build(ctx context.Context, ds dataset.Dataset, metric distance.Metric, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.M < 2 {
		// M == 1 would result in division by zero: 1 / log(1)
		opts.M = 2
	}
	opts.EfConstruction = max(opts.EfConstruction, opts.M)
	opts.EfSearch = max(opts.EfSearch, 1)

	fn, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, ErrEmptyIndex
	}

	n := ds.Len()
	h := &Index{
		dim:     ds.Dimension(),
		metric:  metric,
		dist:    fn,
		opts:    opts,
		mmax:    opts.M,
		mmax0:   2 * opts.M,
		ml:      1 / math.Log(float64(opts.M)),
		ids:     make([]uint32, 0, n),
		vectors: make([]float32, 0, n*ds.Dimension()),
		links:   make([][][]uint32, 0, n),
	}
	h.scratch.New = func() any {
		return &searchScratch{
			visited:    bitset.New(uint(len(h.ids))),
			results:    queue{farthest: true},
			candidates: queue{},
		}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	for id, vec := range ds.All() {
		if len(h.ids)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(vec) != h.dim {
			return nil, &ErrDimensionMismatch{Expected: h.dim, Actual: len(vec)}
		}
		h.insert(id, vec, h.randomLevel(rng))
	}

	return h, nil
}

func (h *Index) randomLevel(rng *rand.Rand) int {
	// 1-U is in (0, 1], so the log is finite.
	return int(math.Floor(-math.Log(1-rng.Float64()) * h.ml))
}

// Len returns the number of indexed vectors.
func (h *Index) Len() int { return len(h.ids) }

// Dimension returns the vector dimension.
func (h *Index) Dimension() int { return h.dim }

// Metric returns the distance metric the graph was built with.
func (h *Index) Metric() distance.Metric { return h.metric }

// Options returns the effective build options.
func (h *Index) Options() Options { return h.opts }

// MaxLevel returns the top layer of the graph.
func (h *Index) MaxLevel() int { return h.maxLevel }

func (h *Index) vector(node uint32) []float32 {
	off := int(node) * h.dim
	return h.vectors[off : off+h.dim : off+h.dim]
}

func (h *Index) insert(id uint32, vec []float32, level int) {
	node := uint32(len(h.ids))
	h.ids = append(h.ids, id)
	h.vectors = append(h.vectors, vec...)
	h.links = append(h.links, make([][]uint32, level+1))
	q := h.vector(node)

	if node == 0 {
		h.ep = 0
		h.maxLevel = level
		return
	}

	s := h.getScratch()
	defer h.scratch.Put(s)

	cur := item{node: h.ep, dist: h.dist(q, h.vector(h.ep))}
	for l := h.maxLevel; l > level; l-- {
		cur = h.greedy(q, cur, l)
	}

	for l := min(level, h.maxLevel); l >= 0; l-- {
		found := h.searchLayer(q, cur, h.opts.EfConstruction, l, s)
		neighbours := h.selectNeighbours(found, h.opts.M)

		conns := make([]uint32, len(neighbours))
		for i, it := range neighbours {
			conns[i] = it.node
		}
		h.links[node][l] = conns

		for _, n := range conns {
			h.link(n, node, l)
		}
		cur = found[0]
	}

	if level > h.maxLevel {
		h.ep = node
		h.maxLevel = level
	}
}

// greedy walks layer l towards q until no neighbour is closer.
func (h *Index) greedy(q []float32, cur item, l int) item {
	for changed := true; changed; {
		changed = false
		for _, n := range h.links[cur.node][l] {
			if d := h.dist(q, h.vector(n)); d < cur.dist {
				cur = item{node: n, dist: d}
				changed = true
			}
		}
	}
	return cur
}

// link adds a directed edge from -> to on layer l, shrinking from's list when full.
func (h *Index) link(from, to uint32, l int) {
	maxConnections := h.mmax
	if l == 0 {
		maxConnections = h.mmax0
	}

	conns := append(h.links[from][l], to)
	if len(conns) <= maxConnections {
		h.links[from][l] = conns
		return
	}

	base := h.vector(from)
	cands := make([]item, len(conns))
	for i, n := range conns {
		cands[i] = item{node: n, dist: h.dist(base, h.vector(n))}
	}
	slices.SortFunc(cands, compareItems)

	kept := h.selectNeighbours(cands, maxConnections)
	conns = conns[:0]
	for _, it := range kept {
		conns = append(conns, it.node)
	}
	h.links[from][l] = conns
}

// searchLayer returns up to ef nodes of layer l closest to q, ascending.
func (h *Index) searchLayer(q []float32, ep item, ef, l int, s *searchScratch) []item {
	s.visited.ClearAll()
	s.candidates.reset()
	s.results.reset()

	s.visited.Set(uint(ep.node))
	s.candidates.push(ep)
	s.results.push(ep)

	for s.candidates.Len() > 0 {
		c := s.candidates.pop()
		if s.results.top().closer(c) && s.results.Len() >= ef {
			break
		}

		for _, n := range h.links[c.node][l] {
			if s.visited.Test(uint(n)) {
				continue
			}
			s.visited.Set(uint(n))

			it := item{node: n, dist: h.dist(q, h.vector(n))}
			if s.results.Len() < ef {
				s.results.push(it)
				s.candidates.push(it)
			} else if it.closer(s.results.top()) {
				s.results.pop()
				s.results.push(it)
				s.candidates.push(it)
			}
		}
	}

	out := make([]item, s.results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = s.results.pop()
	}
	return out
}

// selectNeighbours picks up to m items from ascending cands. The heuristic
// keeps a candidate only if it is closer to the base than to every kept
// neighbour, then tops up with the pruned ones.
func (h *Index) selectNeighbours(cands []item, m int) []item {
	if len(cands) <= m || !h.opts.Heuristic {
		return cands[:min(m, len(cands))]
	}

	kept := make([]item, 0, m)
	var pruned []item
	for _, c := range cands {
		if len(kept) >= m {
			break
		}
		good := true
		cv := h.vector(c.node)
		for _, k := range kept {
			if h.dist(cv, h.vector(k.node)) < c.dist {
				good = false
				break
			}
		}
		if good {
			kept = append(kept, c)
		} else {
			pruned = append(pruned, c)
		}
	}
	for _, p := range pruned {
		if len(kept) >= m {
			break
		}
		kept = append(kept, p)
	}
	return kept
}

func (h *Index) getScratch() *searchScratch {
	s := h.scratch.Get().(*searchScratch)
	if s.visited.Len() < uint(len(h.ids)) {
		s.visited = bitset.New(uint(len(h.ids)))
	}
	return s
}

// Search returns up to k nearest neighbours of q, ascending by distance with
// ties broken by identifier. effort is the search candidate list size (ef);
// zero uses Options.EfSearch. ef never drops below k.
func (h *Index) Search(ctx context.Context, q []float32, k, effort int) (topk.Result, error) {
	if len(q) != h.dim {
		return nil, &ErrDimensionMismatch{Expected: h.dim, Actual: len(q)}
	}
	if k <= 0 {
		return topk.Result{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ef := effort
	if ef <= 0 {
		ef = h.opts.EfSearch
	}
	ef = max(ef, k)

	s := h.getScratch()
	defer h.scratch.Put(s)

	cur := item{node: h.ep, dist: h.dist(q, h.vector(h.ep))}
	for l := h.maxLevel; l > 0; l-- {
		cur = h.greedy(q, cur, l)
	}
	found := h.searchLayer(q, cur, ef, 0, s)

	res := make(topk.Result, 0, min(k, len(found)))
	for _, it := range found {
		res = append(res, topk.Candidate{ID: h.ids[it.node], Distance: topk.Distance(it.dist)})
	}
	slices.SortFunc(res, topk.Candidate.Compare)
	return res.Prefix(k), nil
}

func compareItems(a, b item) int {
	switch {
	case a.closer(b):
		return -1
	case b.closer(a):
		return 1
	default:
		return 0
	}
}
