package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryFetchesOnMiss(t *testing.T) {
	c := NewMemory(time.Hour)
	calls := 0

	data, err := c.GetOrFetch(context.Background(), "fr", func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("payload"), nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, 1, calls)
}

func TestMemoryServesFreshEntry(t *testing.T) {
	c := NewMemory(time.Hour)
	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	_, _ = c.GetOrFetch(context.Background(), "fr", fetch)
	data, err := c.GetOrFetch(context.Background(), "fr", fetch)

	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, 1, calls)
}

func TestMemoryRefetchesStaleEntry(t *testing.T) {
	c := NewMemory(time.Hour)
	current := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	_, _ = c.GetOrFetch(context.Background(), "fr", fetch)

	// 61 minutes later the entry is past the 1h TTL.
	current = current.Add(61 * time.Minute)
	_, err := c.GetOrFetch(context.Background(), "fr", fetch)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestMemoryFetchErrorNotCached(t *testing.T) {
	c := NewMemory(time.Hour)
	boom := errors.New("boom")

	_, err := c.GetOrFetch(context.Background(), "fr", func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// A later successful fetch must run, not find a poisoned entry.
	data, err := c.GetOrFetch(context.Background(), "fr", func(ctx context.Context) ([]byte, error) {
		return []byte("ok"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory(time.Hour)
	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	_, _ = c.GetOrFetch(context.Background(), "fr", fetch)
	c.Invalidate("fr")
	_, _ = c.GetOrFetch(context.Background(), "fr", fetch)

	assert.Equal(t, 2, calls)
}
