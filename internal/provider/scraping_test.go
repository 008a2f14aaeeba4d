package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapingThrottleCanceledWaitReleasesSlot(t *testing.T) {
	p := NewScraping()
	p.rateLimit = time.Hour
	start := time.Now()
	p.lastFetch = start

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	perr := p.throttle(ctx)
	require.NotNil(t, perr)
	assert.Equal(t, KindNetwork, perr.Kind)

	// The canceled caller did not claim the slot; the next caller is not
	// pushed further into the future.
	p.mu.Lock()
	last := p.lastFetch
	p.mu.Unlock()
	assert.True(t, last.Equal(start))
}

func TestScrapingThrottleClaimsSlotOnProceed(t *testing.T) {
	p := NewScraping()
	p.rateLimit = 0

	before := time.Now()
	require.Nil(t, p.throttle(context.Background()))

	p.mu.Lock()
	last := p.lastFetch
	p.mu.Unlock()
	assert.False(t, last.Before(before))
}
