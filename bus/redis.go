package bus

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is a Fabric backed by redis pub/sub, shared by every worker process of a room.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to redis and verifies connectivity.
func NewRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Publish(ctx context.Context, topic string, msg Message) error {
	return r.rdb.Publish(ctx, topic, msg.Marshal()).Err()
}

func (r *Redis) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := r.rdb.Subscribe(ctx, topic)

	// wait for the subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		topic:  topic,
		ch:     make(chan Message, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	topic  string
	ch     chan Message
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.ch)

	for raw := range s.pubsub.Channel() {
		msg, err := Unmarshal([]byte(raw.Payload))
		if err != nil {
			log.Warn().Str("topic", s.topic).Err(err).Msg("dropping undecodable bus message")
			continue
		}
		select {
		case s.ch <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan Message {
	return s.ch
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
