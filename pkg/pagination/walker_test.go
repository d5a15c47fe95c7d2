package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagesFrom serves pages[i] for page i and an empty page past the end.
func pagesFrom(pages [][]int, calls *[]int) PageFunc[int] {
	return func(ctx context.Context, page, pageSize int) ([]int, error) {
		*calls = append(*calls, page)
		if page < len(pages) {
			return pages[page], nil
		}
		return nil, nil
	}
}

func TestWalk_StopsAtFirstEmptyPage(t *testing.T) {
	tests := []struct {
		name      string
		pages     [][]int
		wantCalls []int
		wantPages int
		wantItems int
	}{
		{
			name:      "no items",
			pages:     nil,
			wantCalls: []int{0},
		},
		{
			name:      "single partial page",
			pages:     [][]int{{1, 2, 3}},
			wantCalls: []int{0, 1},
			wantPages: 1,
			wantItems: 3,
		},
		{
			name:      "full pages then empty",
			pages:     [][]int{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, {11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, {21}},
			wantCalls: []int{0, 1, 2, 3},
			wantPages: 3,
			wantItems: 21,
		},
		{
			name:      "items after an empty page are never requested",
			pages:     [][]int{{1}, {}, {3}},
			wantCalls: []int{0, 1},
			wantPages: 1,
			wantItems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []int
			var visited []int

			walker := NewWalker(pagesFrom(tt.pages, &calls), DefaultConfig())
			stats, err := walker.Walk(context.Background(), func(page int, items []int) error {
				visited = append(visited, items...)
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantPages, stats.Pages)
			assert.Equal(t, tt.wantItems, stats.Items)
			assert.Len(t, visited, tt.wantItems)
		})
	}
}

func TestWalk_PassesPageSize(t *testing.T) {
	var sizes []int
	fetch := func(ctx context.Context, page, pageSize int) ([]string, error) {
		sizes = append(sizes, pageSize)
		if page == 0 {
			return []string{"a"}, nil
		}
		return []string{}, nil
	}

	_, err := NewWalker(fetch, DefaultConfig()).Walk(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []int{DefaultPageSize, DefaultPageSize}, sizes)
}

func TestNewWalker_Defaults(t *testing.T) {
	w := NewWalker[int](nil, Config{PageSize: 0, StartPage: -3})

	assert.Equal(t, DefaultPageSize, w.config.PageSize)
	assert.Equal(t, 0, w.config.StartPage)
}

func TestWalk_FetchErrorStops(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(ctx context.Context, page, pageSize int) ([]int, error) {
		if page == 1 {
			return nil, boom
		}
		return []int{page}, nil
	}

	stats, err := NewWalker(fetch, DefaultConfig()).Walk(context.Background(), nil)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch page 1")
	assert.Equal(t, 1, stats.Pages)
}

func TestWalk_VisitErrorStops(t *testing.T) {
	var calls []int
	stop := errors.New("stop")

	walker := NewWalker(pagesFrom([][]int{{1}, {2}, {3}}, &calls), DefaultConfig())
	_, err := walker.Walk(context.Background(), func(page int, items []int) error {
		if page == 1 {
			return stop
		}
		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1}, calls)
}

func TestWalk_MaxPages(t *testing.T) {
	endless := func(ctx context.Context, page, pageSize int) ([]int, error) {
		return []int{page}, nil
	}

	stats, err := NewWalker(endless, Config{PageSize: 10, MaxPages: 3}).Walk(context.Background(), nil)

	require.ErrorIs(t, err, ErrPageLimit)
	assert.Equal(t, 3, stats.Pages)
}
