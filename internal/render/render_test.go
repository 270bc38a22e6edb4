package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minifeed/internal/domain"
	"minifeed/internal/render"
)

func samplePosts() []domain.Post {
	return []domain.Post{
		{ID: 100, Author: "alice", Text: "Hello World", LikesBy: []string{"bob"}, Likes: 1},
		{ID: 300, Author: "bob", Text: "check https://example.com/a now", LikesBy: []string{}},
		{ID: 200, Author: "carol", Text: "quiet day", LikesBy: []string{"alice", "bob"}, Likes: 2},
	}
}

func TestFeedSortsNewestFirst(t *testing.T) {
	alice := &domain.User{Name: "alice", Email: "alice@x.com"}

	views := render.Feed(samplePosts(), alice, "")
	require.Len(t, views, 3)

	for i := 1; i < len(views); i++ {
		assert.Greater(t, views[i-1].ID, views[i].ID, "feed must be strictly descending by ID")
	}
}

func TestFeedIsIdempotentAndPure(t *testing.T) {
	posts := samplePosts()
	alice := &domain.User{Name: "alice", Email: "alice@x.com"}

	first := render.Feed(posts, alice, "")
	second := render.Feed(posts, alice, "")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("render is not idempotent (-first +second):\n%s", diff)
	}

	// Input order is untouched.
	assert.Equal(t, int64(100), posts[0].ID)
}

func TestFeedDerivesFlags(t *testing.T) {
	alice := &domain.User{Name: "alice", Email: "alice@x.com"}

	views := render.Feed(samplePosts(), alice, "")

	byID := map[int64]render.PostView{}
	for _, v := range views {
		byID[v.ID] = v
	}

	assert.True(t, byID[100].OwnedByCurrentUser)
	assert.False(t, byID[100].LikedByCurrentUser)
	assert.True(t, byID[200].LikedByCurrentUser)
	assert.False(t, byID[200].OwnedByCurrentUser)
}

func TestFeedWithoutUserShowsNoAffordances(t *testing.T) {
	views := render.Feed(samplePosts(), nil, "")

	for _, v := range views {
		assert.False(t, v.LikedByCurrentUser)
		assert.False(t, v.OwnedByCurrentUser)
	}
}

func TestFeedFilters(t *testing.T) {
	views := render.Feed(samplePosts(), nil, "world")
	require.Len(t, views, 1)
	assert.Equal(t, "Hello World", views[0].Text)

	// Author matches count as well.
	views = render.Feed(samplePosts(), nil, "CAROL")
	require.Len(t, views, 1)
	assert.Equal(t, int64(200), views[0].ID)
}

func TestFeedExtractsLinks(t *testing.T) {
	views := render.Feed(samplePosts(), nil, "")

	for _, v := range views {
		if v.ID == 300 {
			assert.Equal(t, []string{"https://example.com/a"}, v.Links)

			return
		}
	}

	t.Fatal("post 300 missing from feed")
}
