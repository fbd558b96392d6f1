package topk

import (
	"cmp"
	"math"
)

const signBit = 1 << 31

// Distance is a float32 distance compared under a total order derived from
// its bit pattern.
//
// NaN has no place in the order. Callers must reject NaN before it reaches a
// selector; the distance package does so for every metric it provides.
type Distance float32

// MaxDistance sorts after every finite distance.
const MaxDistance = Distance(math.MaxFloat32)

// Key returns an unsigned integer whose natural order matches the numeric
// order of d. Negative and positive zero share one key.
func (d Distance) Key() uint32 {
	if d == 0 {
		return signBit
	}
	bits := math.Float32bits(float32(d))
	if bits&signBit != 0 {
		return ^bits
	}
	return bits | signBit
}

// Compare returns -1, 0 or +1 depending on whether d sorts before, equal to
// or after o.
func (d Distance) Compare(o Distance) int {
	return cmp.Compare(d.Key(), o.Key())
}

// Less reports whether d sorts strictly before o.
func (d Distance) Less(o Distance) bool {
	return d.Key() < o.Key()
}

// IsFinite reports whether d is neither infinite nor NaN.
func (d Distance) IsFinite() bool {
	f := float64(d)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float32 returns d as a plain float32.
func (d Distance) Float32() float32 {
	return float32(d)
}
