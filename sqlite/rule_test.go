package sqlite_test

import (
	"context"
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleService_SaveRule(t *testing.T) {
	t.Parallel()

	t.Run("InsertAndFind", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewRuleService(MustOpenDB(t))
		ctx := context.Background()

		rule := &arremate.ScrapingRule{
			Domain:       "x.com",
			ListSelector: ".card a",
			DetailSelectors: &arremate.DetailSelectors{
				Title: "h1.titulo",
				Price: ".valor",
			},
		}
		require.NoError(t, s.SaveRule(ctx, rule))

		got, err := s.FindRuleByDomain(ctx, "x.com")
		require.NoError(t, err)
		assert.Equal(t, ".card a", got.ListSelector)
		require.NotNil(t, got.DetailSelectors)
		assert.Equal(t, "h1.titulo", got.DetailSelectors.Title)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("UpsertKeepsCreatedAt", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewRuleService(MustOpenDB(t))
		ctx := context.Background()

		require.NoError(t, s.SaveRule(ctx, &arremate.ScrapingRule{Domain: "x.com", ListSelector: ".old a"}))
		first, err := s.FindRuleByDomain(ctx, "x.com")
		require.NoError(t, err)

		require.NoError(t, s.SaveRule(ctx, &arremate.ScrapingRule{Domain: "x.com", ListSelector: ".new a"}))
		got, err := s.FindRuleByDomain(ctx, "x.com")
		require.NoError(t, err)
		assert.Equal(t, ".new a", got.ListSelector)
		assert.Equal(t, first.CreatedAt, got.CreatedAt)
	})

	t.Run("MissingDomainIsInvalid", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewRuleService(MustOpenDB(t))
		err := s.SaveRule(context.Background(), &arremate.ScrapingRule{})
		require.Error(t, err)
		assert.Equal(t, arremate.EINVALID, arremate.ErrorCode(err))
	})

	t.Run("UnknownDomainReturnsNotFound", func(t *testing.T) {
		t.Parallel()

		s := sqlite.NewRuleService(MustOpenDB(t))
		_, err := s.FindRuleByDomain(context.Background(), "nada.com")
		require.Error(t, err)
		assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))
	})
}
