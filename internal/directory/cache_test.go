package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/twohop/internal/core/model"
)

func TestWithProfileCache_Disabled(t *testing.T) {
	inner := &FakeDirectory{}
	assert.Same(t, inner, WithProfileCache(inner, 0, time.Minute))
	assert.Same(t, inner, WithProfileCache(inner, 10, 0))
}

func TestCachedDirectory_Profiles(t *testing.T) {
	inner := &FakeDirectory{People: map[int64]model.Profile{
		1: {ID: 1, Name: "a"},
		2: {ID: 2, Name: "b"},
	}}
	d := WithProfileCache(inner, 10, time.Minute)

	got, err := d.Profiles(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = d.Profiles(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// the second call only asks for the id that was never found
	require.Len(t, inner.ProfileCalls, 2)
	assert.Equal(t, []int64{3}, inner.ProfileCalls[1])
}

func TestCachedDirectory_EgoGraphNotCached(t *testing.T) {
	inner := &FakeDirectory{Graph: &model.EgoGraph{Center: 1}}
	d := WithProfileCache(inner, 10, time.Minute)

	_, _ = d.EgoGraph(context.Background(), 1, 2)
	_, _ = d.EgoGraph(context.Background(), 1, 2)
	assert.Equal(t, 2, inner.GraphCalls)
}

func TestCachedDirectory_Expiry(t *testing.T) {
	inner := &FakeDirectory{People: map[int64]model.Profile{1: {ID: 1}}}
	d := WithProfileCache(inner, 10, 20*time.Millisecond)

	_, err := d.Profiles(context.Background(), []int64{1})
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = d.Profiles(context.Background(), []int64{1})
	require.NoError(t, err)

	assert.Len(t, inner.ProfileCalls, 2)
}

func TestCachedDirectory_PropagatesErrors(t *testing.T) {
	inner := &FakeDirectory{Err: ErrDirectoryUnavailable}
	_, err := WithProfileCache(inner, 10, time.Minute).Profiles(context.Background(), []int64{1})
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}
