package workers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisStatusFeed streams the payloads the pool publishes for one résumé.
type RedisStatusFeed struct {
	Redis redis.UniversalClient
}

// Subscribe returns once the subscription is live, so anything published
// afterwards is delivered. The channel closes when ctx is done or the
// connection drops.
func (f *RedisStatusFeed) Subscribe(ctx context.Context, resumeID string) (<-chan string, error) {
	pubsub := f.Redis.Subscribe(ctx, StatusChannel(resumeID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			select {
			case out <- m.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
