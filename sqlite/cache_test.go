package sqlite_test

import (
	"context"
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorCacheService_Get(t *testing.T) {
	t.Parallel()

	t.Run("ExactHitIncrementsUseCount", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		ctx := context.Background()

		set := arremate.SelectorSet{ListSelector: ".card a"}
		require.NoError(t, s.Put(ctx, "https://x.com/busca", "x.com", arremate.PageTypeList, set))

		entry, err := s.Get(ctx, "https://x.com/busca", arremate.PageTypeList)
		require.NoError(t, err)
		assert.Equal(t, ".card a", entry.Selectors.ListSelector)
		assert.Equal(t, 2, entry.UseCount, "a fresh entry starts at one use")
		assert.Equal(t, 0.5, entry.SuccessRate)

		entry, err = s.Get(ctx, "https://x.com/busca", arremate.PageTypeList)
		require.NoError(t, err)
		assert.Equal(t, 3, entry.UseCount)
	})

	t.Run("MissReturnsNotFound", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		_, err := s.Get(context.Background(), "https://x.com/nada", arremate.PageTypeList)
		require.Error(t, err)
		assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))
	})

	t.Run("SimilarityFallbackRequiresHighRate", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		ctx := context.Background()

		set := arremate.SelectorSet{ListSelector: ".card a"}
		require.NoError(t, s.Put(ctx, "https://x.com/busca", "x.com", arremate.PageTypeList, set))

		// Fresh entries sit at 0.5, below the similarity threshold.
		_, err := s.Get(ctx, "https://x.com/outra-pagina", arremate.PageTypeList)
		require.Error(t, err)
		assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))

		// Push the rate above the threshold.
		for range 3 {
			require.NoError(t, s.RecordOutcome(ctx, "https://x.com/busca", true))
		}

		entry, err := s.Get(ctx, "https://x.com/outra-pagina", arremate.PageTypeList)
		require.NoError(t, err)
		assert.Equal(t, "https://x.com/busca", entry.URL)
		assert.Equal(t, 1, entry.UseCount, "similarity hit must not count as a use")
	})

	t.Run("SimilarityPrefersBestRate", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "https://x.com/a", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".a a"}))
		require.NoError(t, s.Put(ctx, "https://x.com/b", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".b a"}))

		// A read bumps a to two uses, so its outcome carries weight 1/3
		// and lands near 0.67; b's outcome carries weight 1/2 and lands
		// at 0.75.
		_, err := s.Get(ctx, "https://x.com/a", arremate.PageTypeList)
		require.NoError(t, err)
		require.NoError(t, s.RecordOutcome(ctx, "https://x.com/a", true))
		require.NoError(t, s.RecordOutcome(ctx, "https://x.com/b", true))

		entry, err := s.Get(ctx, "https://x.com/c", arremate.PageTypeList)
		require.NoError(t, err)
		assert.Equal(t, ".b a", entry.Selectors.ListSelector)
	})

	t.Run("PageTypesAreSeparate", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".l a"}))

		_, err := s.Get(ctx, "https://x.com/p", arremate.PageTypeDetail)
		require.Error(t, err)
		assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))
	})
}

func TestSelectorCacheService_Put_ResetsRate(t *testing.T) {
	t.Parallel()

	s := sqlite.NewSelectorCacheService(MustOpenDB(t))
	ctx := context.Background()

	set := arremate.SelectorSet{ListSelector: ".old a"}
	require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, set))
	for range 3 {
		require.NoError(t, s.RecordOutcome(ctx, "https://x.com/p", true))
	}

	require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".new a"}))

	entry, err := s.Get(ctx, "https://x.com/p", arremate.PageTypeList)
	require.NoError(t, err)
	assert.Equal(t, ".new a", entry.Selectors.ListSelector)
	assert.Equal(t, 0.5, entry.SuccessRate, "replacing selectors resets trust to neutral")
}

func TestSelectorCacheService_RecordOutcome(t *testing.T) {
	t.Parallel()

	t.Run("MovingAverage", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".a a"}))

		// A freshly stored entry counts one use, so its first outcome
		// carries weight 1/2 and moves 0.5 to 0.75.
		require.NoError(t, s.RecordOutcome(ctx, "https://x.com/p", true))

		entry, err := s.Get(ctx, "https://x.com/p", arremate.PageTypeList)
		require.NoError(t, err)
		assert.InDelta(t, 0.75, entry.SuccessRate, 1e-9)
		assert.Equal(t, 2, entry.UseCount)
	})

	t.Run("FailureLowersRate", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".a a"}))
		require.NoError(t, s.RecordOutcome(ctx, "https://x.com/p", false))

		entry, err := s.Get(ctx, "https://x.com/p", arremate.PageTypeList)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, entry.SuccessRate, 1e-9)
	})

	t.Run("UnknownURLReturnsNotFound", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewSelectorCacheService(MustOpenDB(t))
		err := s.RecordOutcome(context.Background(), "https://x.com/nada", true)
		require.Error(t, err)
		assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))
	})
}

func TestSelectorCacheService_Invalidate(t *testing.T) {
	t.Parallel()

	s := sqlite.NewSelectorCacheService(MustOpenDB(t))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".a a"}))
	require.NoError(t, s.Invalidate(ctx, "https://x.com/p"))

	_, err := s.Get(ctx, "https://x.com/p", arremate.PageTypeList)
	require.Error(t, err)
	assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))

	// A later Put revalidates the entry.
	require.NoError(t, s.Put(ctx, "https://x.com/p", "x.com", arremate.PageTypeList, arremate.SelectorSet{ListSelector: ".b a"}))
	entry, err := s.Get(ctx, "https://x.com/p", arremate.PageTypeList)
	require.NoError(t, err)
	assert.Equal(t, ".b a", entry.Selectors.ListSelector)
}
