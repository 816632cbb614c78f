//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedis(t *testing.T) {
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })
	require.NoError(t, err)

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := NewRedis(ctx, fmt.Sprintf("redis://%s/0", endpoint), "", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, gen, "k", []byte("v")))
	b, ok, err := c.Get(ctx, gen, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))

	require.NoError(t, c.Invalidate(ctx))
	next, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	_, ok, err = c.Get(ctx, next, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
