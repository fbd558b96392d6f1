package recall

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/annrecall/topk"
)

// ErrInvalidLevel reports an unusable recall level.
type ErrInvalidLevel struct {
	Index  int
	Level  int
	Reason string
}

func (e *ErrInvalidLevel) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("recall: invalid recall levels: %s", e.Reason)
	}
	return fmt.Sprintf("recall: invalid recall level %d at position %d: %s", e.Level, e.Index, e.Reason)
}

// ValidateLevels checks that levels is non-empty, positive and strictly increasing.
func ValidateLevels(levels []int) error {
	if len(levels) == 0 {
		return &ErrInvalidLevel{Index: -1, Reason: "no levels given"}
	}
	prev := 0
	for i, r := range levels {
		if r <= 0 {
			return &ErrInvalidLevel{Index: i, Level: r, Reason: "must be positive"}
		}
		if r <= prev {
			return &ErrInvalidLevel{Index: i, Level: r, Reason: fmt.Sprintf("must be greater than %d", prev)}
		}
		prev = r
	}
	return nil
}

// Scorer computes recall at a fixed family of levels.
// It reuses its bitmaps between calls and is not safe for concurrent use.
type Scorer struct {
	levels    []int
	relevant  *roaring.Bitmap
	retrieved *roaring.Bitmap
}

// NewScorer validates levels and returns a Scorer for them.
func NewScorer(levels []int) (*Scorer, error) {
	if err := ValidateLevels(levels); err != nil {
		return nil, err
	}
	return &Scorer{
		levels:    append([]int(nil), levels...),
		relevant:  roaring.New(),
		retrieved: roaring.New(),
	}, nil
}

// Levels returns the scorer's recall levels.
func (s *Scorer) Levels() []int {
	return s.levels
}

// MaxLevel returns the largest recall level, which is the k ground truth must be computed at.
func (s *Scorer) MaxLevel() int {
	return s.levels[len(s.levels)-1]
}

// Score returns recall for each level, in level order.
// Ground truth must hold at least MaxLevel entries.
func (s *Scorer) Score(groundTruth, retrieved topk.Result) ([]float64, error) {
	if top := s.MaxLevel(); len(groundTruth) < top {
		return nil, &ErrInvalidLevel{
			Index:  len(s.levels) - 1,
			Level:  top,
			Reason: fmt.Sprintf("exceeds ground truth size %d", len(groundTruth)),
		}
	}

	s.relevant.Clear()
	s.retrieved.Clear()

	scores := make([]float64, len(s.levels))
	gtDone, retDone := 0, 0
	for i, r := range s.levels {
		for _, c := range groundTruth[gtDone:r] {
			s.relevant.Add(c.ID)
		}
		gtDone = r

		end := min(r, len(retrieved))
		for _, c := range retrieved[retDone:end] {
			s.retrieved.Add(c.ID)
		}
		retDone = end

		scores[i] = float64(s.relevant.AndCardinality(s.retrieved)) / float64(r)
	}
	return scores, nil
}

// Score is a one-shot form of Scorer.Score keyed by level.
func Score(groundTruth, retrieved topk.Result, levels []int) (map[int]float64, error) {
	s, err := NewScorer(levels)
	if err != nil {
		return nil, err
	}
	scores, err := s.Score(groundTruth, retrieved)
	if err != nil {
		return nil, err
	}
	out := make(map[int]float64, len(levels))
	for i, r := range s.levels {
		out[r] = scores[i]
	}
	return out, nil
}
