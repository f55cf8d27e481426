package broadcast

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisChannelPrefix = "mfa:invalidate:"

// RedisBroker carries invalidation signals across processes via redis
// pub/sub. Local fan-out is delegated to a MemoryBroker fed by one
// goroutine per topic.
type RedisBroker struct {
	client *redis.Client
	local  *MemoryBroker

	mu      sync.Mutex
	readers map[string]func()
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{
		client:  client,
		local:   NewMemoryBroker(),
		readers: make(map[string]func()),
	}
}

func (b *RedisBroker) Subscribe(topic string) (<-chan struct{}, func()) {
	b.ensureReader(topic)
	return b.local.Subscribe(topic)
}

func (b *RedisBroker) Invalidate(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, redisChannelPrefix+topic, "invalidate").Err(); err != nil {
		return errors.Wrap(err, "failed to publish invalidation")
	}
	return nil
}

func (b *RedisBroker) ensureReader(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.readers[topic]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.client.Subscribe(ctx, redisChannelPrefix+topic)
	b.readers[topic] = func() {
		cancel()
		_ = sub.Close()
	}

	go func() {
		for range sub.Channel() {
			if err := b.local.Invalidate(ctx, topic); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to fan out invalidation")
			}
		}
	}()
}

// Close stops all topic readers.
func (b *RedisBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, stop := range b.readers {
		stop()
		delete(b.readers, topic)
	}
}
