// Package batch splits ordered row sets into bounded, contiguous chunks.
package batch

// DefaultMaxSize is the batch size used when a caller passes max <= 0.
const DefaultMaxSize = 10000

// Batch is a contiguous slice of the original input with a 1-based index.
// Concatenating all batches in index order reproduces the input exactly.
type Batch[T any] struct {
	Index int
	Rows  []T
}

// Chunk partitions rows into batches of at most max rows each. The returned
// batches share the input's backing array; callers must not mutate rows.
func Chunk[T any](rows []T, max int) []Batch[T] {
	if max <= 0 {
		max = DefaultMaxSize
	}
	if len(rows) == 0 {
		return nil
	}

	count := (len(rows) + max - 1) / max
	batches := make([]Batch[T], 0, count)
	for i := 0; i < len(rows); i += max {
		end := i + max
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, Batch[T]{
			Index: len(batches) + 1,
			Rows:  rows[i:end:end],
		})
	}
	return batches
}
