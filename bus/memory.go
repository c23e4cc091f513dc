package bus

import (
	"context"
	"sync"
)

const subscriptionBuffer = 256

// Memory is an in-process Fabric used when the whole room lives in a single process.
type Memory struct {
	locker sync.RWMutex
	subs   map[string]map[*memorySubscription]struct{}
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memorySubscription]struct{})}
}

func (m *Memory) Publish(ctx context.Context, topic string, msg Message) error {
	m.locker.RLock()
	defer m.locker.RUnlock()

	for sub := range m.subs[topic] {
		select {
		case sub.ch <- msg:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &memorySubscription{
		parent: m,
		topic:  topic,
		ch:     make(chan Message, subscriptionBuffer),
		done:   make(chan struct{}),
	}

	m.locker.Lock()
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[*memorySubscription]struct{})
	}
	m.subs[topic][sub] = struct{}{}
	m.locker.Unlock()

	return sub, nil
}

type memorySubscription struct {
	parent *Memory
	topic  string
	ch     chan Message
	done   chan struct{}
	once   sync.Once
}

func (s *memorySubscription) Messages() <-chan Message {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		// unblock publishers before taking the write lock
		close(s.done)

		s.parent.locker.Lock()
		delete(s.parent.subs[s.topic], s)
		if len(s.parent.subs[s.topic]) == 0 {
			delete(s.parent.subs, s.topic)
		}
		s.parent.locker.Unlock()

		close(s.ch)
	})
	return nil
}
