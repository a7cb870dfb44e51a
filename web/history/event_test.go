package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/web/history"
)

func TestNewEventsCriteria(t *testing.T) {
	t.Parallel()

	t.Run("when all parameters are valid", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name    string
			account string
			kind    string
			page    uint64
			perPage uint64
		}{
			{
				name: "zero values use defaults",
			},
			{
				name:    "account filter with pagination",
				account: "0x00000000000000000000000000000000000000aa",
				page:    2,
				perPage: 25,
			},
			{
				name: "kind filter only",
				kind: audit.KindTokensClaimed,
			},
			{
				name:    "both filters with high page number",
				account: "00000000000000000000000000000000000000bb",
				kind:    audit.KindTransfer,
				page:    999,
				perPage: 100,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				criteria, err := history.NewEventsCriteria(tc.account, tc.kind, tc.page, tc.perPage)

				// Assert
				require.NoError(t, err)
				assert.Equal(t, tc.account != "", criteria.Account.IsSet())
				assert.Equal(t, tc.kind, criteria.Kind.String())

				// Verify default handling
				expectedPage := tc.page
				if expectedPage == 0 {
					expectedPage = history.DefaultPage
				}
				assert.Equal(t, expectedPage, criteria.Page.Uint64())

				expectedPerPage := tc.perPage
				if expectedPerPage == 0 {
					expectedPerPage = history.DefaultPerPage
				}
				assert.Equal(t, expectedPerPage, criteria.Size.Uint64())
			})
		}
	})

	t.Run("when the account parameter is invalid", func(t *testing.T) {
		t.Parallel()

		criteria, err := history.NewEventsCriteria("0xnothex", "", 1, 50)

		assert.Error(t, err)
		assert.ErrorIs(t, err, history.ErrInvalidAccount)
		assert.ErrorIs(t, err, ethaddr.ErrInvalidLength)
		assert.Equal(t, history.EventsCriteria{}, criteria, "Should return zero value on error")
	})

	t.Run("when the kind parameter is invalid", func(t *testing.T) {
		t.Parallel()

		criteria, err := history.NewEventsCriteria("", "Teleport", 1, 50)

		assert.Error(t, err)
		assert.ErrorIs(t, err, history.ErrInvalidKind)
		assert.ErrorIs(t, err, history.ErrUnknownKind)
		assert.Equal(t, history.EventsCriteria{}, criteria)
	})

	t.Run("when per_page exceeds the maximum", func(t *testing.T) {
		t.Parallel()

		criteria, err := history.NewEventsCriteria("", "", 1, history.MaxPerPage+1)

		assert.Error(t, err)
		assert.ErrorIs(t, err, history.ErrInvalidPerPage)
		assert.ErrorIs(t, err, history.ErrPerPageTooLarge)
		assert.Equal(t, history.EventsCriteria{}, criteria)
	})

	t.Run("error precedence", func(t *testing.T) {
		t.Parallel()

		// Account is validated first, then kind, then per_page

		// Act - invalid account AND invalid per_page
		criteria, err := history.NewEventsCriteria("bogus", "", 1, 999)

		// Assert
		assert.Error(t, err)
		assert.ErrorIs(t, err, history.ErrInvalidAccount, "Should return account error first")
		assert.Equal(t, history.EventsCriteria{}, criteria)
	})
}

func TestEventsCriteria_Pagination(t *testing.T) {
	t.Parallel()

	t.Run("it computes items to skip from page and size", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name     string
			page     history.Page
			size     history.PerPage
			expected uint64
		}{
			{name: "first page skips nothing", page: 1, size: 50, expected: 0},
			{name: "second page skips one page", page: 2, size: 50, expected: 50},
			{name: "high page with small size", page: 10, size: 25, expected: 225},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				criteria := history.EventsCriteria{Page: tc.page, Size: tc.size}

				assert.Equal(t, tc.expected, criteria.ItemsToSkip())
				assert.Equal(t, tc.size.Uint64(), criteria.ItemsPerPage())
			})
		}
	})
}

func TestParseAccountFilter(t *testing.T) {
	t.Parallel()

	t.Run("it canonicalizes the filtered address", func(t *testing.T) {
		t.Parallel()

		filter, err := history.ParseAccountFilter("0x00000000000000000000000000000000000000AB")

		require.NoError(t, err)
		assert.True(t, filter.IsSet())
		assert.Equal(t, "0x00000000000000000000000000000000000000ab", filter.String())
	})

	t.Run("it treats an empty string as no filter", func(t *testing.T) {
		t.Parallel()

		filter, err := history.ParseAccountFilter("")

		require.NoError(t, err)
		assert.False(t, filter.IsSet())
	})
}

func TestEventsPage_Navigation(t *testing.T) {
	t.Parallel()

	t.Run("it reports next from the has-more flag", func(t *testing.T) {
		t.Parallel()

		assert.True(t, (&history.EventsPage{HasMore: true}).HasNext())
		assert.False(t, (&history.EventsPage{HasMore: false}).HasNext())
	})

	t.Run("it reports previous for any page after the first", func(t *testing.T) {
		t.Parallel()

		assert.False(t, (&history.EventsPage{Number: 1}).HasPrevious())
		assert.True(t, (&history.EventsPage{Number: 2}).HasPrevious())
	})
}
