package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinlens-api/pkg/market/chart"
)

func TestToggleFavorite(t *testing.T) {
	s := New()
	assert.True(t, s.ToggleFavorite("bitcoin"))
	assert.True(t, s.ToggleFavorite("ethereum"))
	assert.False(t, s.ToggleFavorite(" "))
	assert.True(t, s.IsFavorite("bitcoin"))
	assert.False(t, s.ToggleFavorite("bitcoin"))
	assert.False(t, s.IsFavorite("bitcoin"))
	assert.Equal(t, []string{"ethereum"}, s.Favorites)
}

func TestViewportState(t *testing.T) {
	s := New()
	s.Select("bitcoin")
	v := s.Viewport(365)
	assert.Equal(t, 30, v.Window)

	for i := 0; i < 100; i++ {
		s.Slide(chart.Left, 365)
	}
	assert.Equal(t, 335, s.Index)

	v = s.SetRange("1y", 365)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 0, s.Index)

	s.SetRange("7d", 365)
	s.Slide(chart.Left, 365)
	assert.Equal(t, 1, s.Index)

	s.Select("bitcoin")
	assert.Equal(t, 1, s.Index)
	s.Select("ethereum")
	assert.Equal(t, 0, s.Index)
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	repo := NewRepository(kv, func(owner string) string { return "test:" + owner })
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	fresh, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "30d", fresh.Range)
	assert.Empty(t, fresh.Favorites)

	_, err = repo.Update(ctx, "alice", func(s *State) {
		s.ToggleFavorite("solana")
		s.Select("solana")
		s.SetRange("90d", 200)
	})
	require.NoError(t, err)

	_, ok, err := kv.Get(ctx, "test:alice")
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"solana"}, loaded.Favorites)
	assert.Equal(t, "solana", loaded.SelectedAsset)
	assert.Equal(t, "90d", loaded.Range)
	assert.True(t, fixed.Equal(loaded.UpdatedAt))

	other, err := repo.Load(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, other.Favorites)
}

func TestRepositoryCorruptPayload(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "viewstate:bob", []byte{0xc1}))
	_, err := NewRepository(kv, nil).Load(ctx, "bob")
	assert.ErrorContains(t, err, "decode bob")
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("dial tcp: refused")
}

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("dial tcp: refused") }

func TestRepositoryBackendErrors(t *testing.T) {
	repo := NewRepository(failingKV{}, nil)
	_, err := repo.Load(context.Background(), "x")
	assert.ErrorContains(t, err, "refused")
	assert.ErrorContains(t, repo.Save(context.Background(), "x", New()), "refused")
}

func TestGenerationsDiscardStale(t *testing.T) {
	var g Generations
	var applied string

	slow := g.Next()
	fast := g.Next()
	assert.Equal(t, fast, g.Current())

	assert.True(t, g.Apply(fast, func() { applied = "fast" }))
	assert.False(t, g.Apply(slow, func() { applied = "slow" }))
	assert.Equal(t, "fast", applied)
}

func TestGenerationsConcurrent(t *testing.T) {
	var g Generations
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Next()
		}()
	}
	wg.Wait()
	assert.Equal(t, Token(50), g.Current())
}

func TestRepositoryConcurrentUpdatesKeepEveryWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryKV(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, "carol", func(s *State) {
				s.ToggleFavorite(fmt.Sprintf("coin-%02d", i))
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state, err := repo.Load(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, state.Favorites, 40)
}

func TestRepositoryCommitDropsStaleToken(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryKV(), nil)

	slow := repo.Begin("dave")
	fast := repo.Begin(" dave ")
	other := repo.Begin("erin")

	_, applied, err := repo.Commit(ctx, "dave", fast, func(s *State) { s.Select("ethereum") })
	require.NoError(t, err)
	assert.True(t, applied)

	state, applied, err := repo.Commit(ctx, "dave", slow, func(s *State) { s.Select("bitcoin") })
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Nil(t, state)

	_, applied, err = repo.Commit(ctx, "erin", other, func(s *State) { s.Select("solana") })
	require.NoError(t, err)
	assert.True(t, applied)

	loaded, err := repo.Load(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, "ethereum", loaded.SelectedAsset)
}
