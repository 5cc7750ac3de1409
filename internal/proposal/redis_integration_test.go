//go:build integration

package proposal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"tattoovision/internal/domain"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(startRedis(t), time.Minute)

	s := NewSession("redis-1", time.Now())
	require.NoError(t, store.Create(ctx, s))

	updated, err := store.Update(ctx, "redis-1", func(s *Session) error {
		token := s.BeginBatch()
		return s.CompleteBatch(token, domain.GenerationRequest{Description: "Koi fish upstream"}, []string{"a", "b", "c"})
	})
	require.NoError(t, err)
	assert.Len(t, updated.Proposals, 3)

	got, err := store.Get(ctx, "redis-1")
	require.NoError(t, err)
	assert.Equal(t, "Koi fish upstream", got.Form.Description)

	require.NoError(t, store.Delete(ctx, "redis-1"))
	_, err = store.Get(ctx, "redis-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRedisStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(startRedis(t), time.Minute)

	s := NewSession("redis-2", time.Now())
	token := s.BeginBatch()
	require.NoError(t, s.CompleteBatch(token, domain.GenerationRequest{}, []string{"a", "b", "c"}))
	require.NoError(t, store.Create(ctx, s))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, "redis-2", func(s *Session) error {
				_, _, err := s.BeginImage(i)
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "redis-2")
	require.NoError(t, err)
	for _, p := range got.Proposals {
		assert.Equal(t, domain.ProposalImagePending, p.State)
	}
	assert.Equal(t, uint64(4), got.NextToken)
}
