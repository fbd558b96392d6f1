// Package recall scores an approximate result against exact ground truth.
//
// Recall@r is |first r of ground truth ∩ first r of retrieved| / r. The
// retrieved prefix is taken as is: when an index returns fewer than r
// results the denominator stays r, and neighbors tied at the boundary get no
// special treatment. Identifier sets are roaring bitmaps, so duplicates in a
// retrieved list collapse.
package recall
