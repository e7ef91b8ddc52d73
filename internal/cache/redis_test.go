package cache

import (
	"context"
	"testing"
	"time"

	"listingguide/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*AnalysisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewAnalysisCache(context.Background(), "redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestAnalysisCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "mock:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	in := &model.ImageAnalysis{
		Description:  "Bright kitchen",
		PropertyType: "apartment",
		Rooms:        map[string]int{"kitchen": 1},
		Amenities:    []string{"dishwasher"},
		Materials:    []string{"granite"},
		Condition:    model.ConditionGood,
	}
	require.NoError(t, c.Set(ctx, "mock:abc", in))
	assert.True(t, mr.Exists(keyPrefix+"mock:abc"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"mock:abc"))

	got, ok, err := c.Get(ctx, "mock:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, got)
}

func TestAnalysisCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", &model.ImageAnalysis{Description: "x"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnalysisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set(keyPrefix+"bad", "{not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(keyPrefix+"bad"))
}

func TestNewAnalysisCache_Errors(t *testing.T) {
	_, err := NewAnalysisCache(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	_, err = NewAnalysisCache(context.Background(), "redis://"+addr, time.Minute)
	assert.Error(t, err)
}
