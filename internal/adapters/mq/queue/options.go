package queue

// Option applies a configuration option to the InMemorySpool.
type Option func(*InMemorySpool)

// WithCapacity sets the maximum number of spooled summaries.
func WithCapacity(capacity int) Option {
	return func(q *InMemorySpool) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
