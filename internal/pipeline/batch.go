package pipeline

// Batch is a contiguous fixed-size slice of records identified by its
// sequence index. Batches are the unit of checkpointing: batch i always
// contains the same records across runs as long as the input is unchanged.
type Batch[T any] struct {
	Index   int
	Records []T
}

// Partition splits records into batches of size batchSize. The last batch may
// be smaller. Empty input or a non-positive size yields zero batches.
func Partition[T any](records []T, batchSize int) []Batch[T] {
	if len(records) == 0 || batchSize <= 0 {
		return nil
	}

	numBatches := (len(records) + batchSize - 1) / batchSize
	batches := make([]Batch[T], 0, numBatches)

	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, Batch[T]{
			Index:   len(batches),
			Records: records[i:end],
		})
	}

	return batches
}
