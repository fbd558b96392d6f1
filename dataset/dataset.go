package dataset

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Dataset is a read-only collection of fixed-dimension vectors.
type Dataset interface {
	// Len returns the number of vectors.
	Len() int
	// Dimension returns the length of every vector.
	Dimension() int
	// At returns the identifier and vector at position i, 0 <= i < Len().
	At(i int) (uint32, []float32)
	// All yields every (identifier, vector) pair in position order.
	All() iter.Seq2[uint32, []float32]
}

// ErrEmpty is returned when a source yields no vectors.
var ErrEmpty = errors.New("dataset: no vectors")

// ErrDimensionMismatch is returned when a vector's length differs from the dataset's.
type ErrDimensionMismatch struct {
	ID       uint32
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dataset: vector %d has dimension %d, expected %d", e.ID, e.Actual, e.Expected)
}

// ErrDuplicateID is returned when an identifier is added twice.
type ErrDuplicateID struct {
	ID uint32
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("dataset: duplicate identifier %d", e.ID)
}

// Memory is an in-memory Dataset backed by one flat slice.
type Memory struct {
	dim  int
	ids  []uint32
	data []float32
	seen map[uint32]struct{}
}

var _ Dataset = (*Memory)(nil)

// NewMemory creates an empty dataset. A dim of 0 adopts the length of the first vector added.
func NewMemory(dim int) *Memory {
	return &Memory{
		dim:  dim,
		seen: make(map[uint32]struct{}),
	}
}

// FromVectors builds a Memory dataset, identifiers are positions.
func FromVectors(vectors [][]float32) (*Memory, error) {
	m := NewMemory(0)
	for i, v := range vectors {
		if err := m.Add(uint32(i), v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add copies vec into the dataset under id.
func (m *Memory) Add(id uint32, vec []float32) error {
	if m.dim == 0 {
		if len(vec) == 0 {
			return &ErrDimensionMismatch{ID: id, Expected: 1, Actual: 0}
		}
		m.dim = len(vec)
	}
	if len(vec) != m.dim {
		return &ErrDimensionMismatch{ID: id, Expected: m.dim, Actual: len(vec)}
	}
	if _, ok := m.seen[id]; ok {
		return &ErrDuplicateID{ID: id}
	}

	m.seen[id] = struct{}{}
	m.ids = append(m.ids, id)
	m.data = append(m.data, vec...)
	return nil
}

// Grow reserves room for n more vectors.
func (m *Memory) Grow(n int) {
	m.ids = slices.Grow(m.ids, n)
	if m.dim > 0 {
		m.data = slices.Grow(m.data, n*m.dim)
	}
}

// Len implements Dataset.
func (m *Memory) Len() int {
	return len(m.ids)
}

// Dimension implements Dataset.
func (m *Memory) Dimension() int {
	return m.dim
}

// At implements Dataset.
func (m *Memory) At(i int) (uint32, []float32) {
	off := i * m.dim
	return m.ids[i], m.data[off : off+m.dim : off+m.dim]
}

// All implements Dataset.
func (m *Memory) All() iter.Seq2[uint32, []float32] {
	return all(m)
}

func all(ds Dataset) iter.Seq2[uint32, []float32] {
	return func(yield func(uint32, []float32) bool) {
		for i := range ds.Len() {
			if !yield(ds.At(i)) {
				return
			}
		}
	}
}

// Copy materializes any dataset into a Memory dataset.
func Copy(ds Dataset) (*Memory, error) {
	m := NewMemory(ds.Dimension())
	m.Grow(ds.Len())
	for id, vec := range ds.All() {
		if err := m.Add(id, vec); err != nil {
			return nil, err
		}
	}
	return m, nil
}
