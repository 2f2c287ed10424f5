package workers

import "context"

const warmBuffer = 100

// StartAllWorkers wires consumer into a Warmer over cache and starts it.
func StartAllWorkers[T any](ctx context.Context, cache Getter[T], consumer Source) *Warmer[T] {
	warmCh := make(chan []byte, warmBuffer)

	StartPassthroughMultiplexer(ctx, consumer, warmCh)

	warmer := NewWarmer[T](warmCh, cache, nil)
	go warmer.Start(ctx)

	return warmer
}
