package workers

import (
	"context"

	"github.com/apex/log"
)

// Source delivers raw messages to a handler, e.g. a kafka.Consumer.
type Source interface {
	Start(ctx context.Context, handler func(key, value []byte))
}

// StartPassthroughMultiplexer forwards every message value from consumer to
// outCh, dropping messages when outCh is full.
func StartPassthroughMultiplexer(ctx context.Context, consumer Source, outCh chan<- []byte) {
	if consumer == nil || outCh == nil {
		return
	}
	consumer.Start(ctx, func(key, value []byte) {
		select {
		case outCh <- value:
		default:
			log.WithField("key", string(key)).Warn("channel full, dropping message")
		}
	})
}
