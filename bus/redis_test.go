package bus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	// two fabrics stand in for two worker processes
	worker1, err := NewRedis(ctx, endpoint, 0)
	require.NoError(t, err)
	defer worker1.Close()
	worker2, err := NewRedis(ctx, endpoint, 0)
	require.NoError(t, err)
	defer worker2.Close()

	sub, err := worker2.Subscribe(ctx, "room:main:events")
	require.NoError(t, err)
	defer sub.Close()

	for i := range 5 {
		msg := Message{Event: "update-players", Exclude: "c1", Payload: []byte(fmt.Sprintf(`{"n":%d}`, i))}
		require.NoError(t, worker1.Publish(ctx, "room:main:events", msg))
	}

	for i := range 5 {
		got := receive(t, sub)
		assert.Equal(t, "update-players", got.Event)
		assert.Equal(t, "c1", got.Exclude)
		assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, i), string(got.Payload))
	}

	require.NoError(t, sub.Close())
	for range sub.Messages() {
	}
}
