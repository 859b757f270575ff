// Package chunker splits work lists into bounded pieces.
package chunker

// Chunk is a contiguous run of items and its position in the source list.
type Chunk[T any] struct {
	Index  int
	Offset int
	Items  []T
}

// Split cuts items into chunks of at most size items, preserving order.
// A size <= 0 yields a single chunk holding everything.
func Split[T any](items []T, size int) []Chunk[T] {
	n := len(items)
	if n == 0 {
		return nil
	}
	if size <= 0 || size >= n {
		return []Chunk[T]{{Index: 0, Offset: 0, Items: items}}
	}
	chunks := make([]Chunk[T], 0, (n+size-1)/size)
	for i := 0; i < n; i += size {
		end := i + size
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk[T]{Index: len(chunks), Offset: i, Items: items[i:end]})
	}
	return chunks
}
