package app_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minifeed/internal/app"
	"minifeed/internal/config"
)

func newApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()

	a, err := app.New(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})

	return a
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	return config.Config{
		DBPath:      filepath.Join(t.TempDir(), "feed.sqlite"),
		RefreshSpec: "@every 1m",
	}
}

func TestSignUpLogInPublishLikeScenario(t *testing.T) {
	a := newApp(t, testConfig(t))
	ctx := context.Background()

	_, err := a.Session().SignUp(ctx, "alice", "alice@x.com")
	require.NoError(t, err)

	user, err := a.Session().LogIn(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Name)

	post, err := a.Posts().Create(ctx, user.Name, "hello world", "")
	require.NoError(t, err)

	require.NoError(t, a.Posts().ToggleLike(ctx, post.ID, user.Name))

	views, err := a.Feed(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)

	got := views[0]
	assert.Equal(t, "alice", got.Author)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{"alice"}, got.LikesBy)
	assert.True(t, got.LikedByCurrentUser)
	assert.True(t, got.OwnedByCurrentUser)
}

func TestFeedSeesWritesFromAnotherInstance(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	writer := newApp(t, cfg)
	_, err := writer.Session().LogIn(ctx, "alice@x.com")
	require.NoError(t, err)

	reader := newApp(t, cfg)
	views, err := reader.Feed(ctx, "")
	require.NoError(t, err)
	require.Empty(t, views)

	_, err = writer.Posts().Create(ctx, "alice", "from the other tab", "")
	require.NoError(t, err)

	// The reload inside Feed picks up the other instance's write.
	views, err = reader.Feed(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "from the other tab", views[0].Text)
}

func TestDarkModePersistsAcrossInstances(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first := newApp(t, cfg)
	assert.False(t, first.DarkMode())

	dark, err := first.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	second := newApp(t, cfg)
	assert.True(t, second.DarkMode())
}

func TestDarkModeAcceptsLegacyStringEncoding(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	seed := newApp(t, cfg)
	// Older exports store the flag as the string "true" rather than a bool.
	require.NoError(t, seed.Store().Set(ctx, "darkMode", "true"))

	reopened := newApp(t, cfg)
	assert.True(t, reopened.DarkMode())
}

func TestLogOutKeepsPosts(t *testing.T) {
	a := newApp(t, testConfig(t))
	ctx := context.Background()

	user, err := a.Session().LogIn(ctx, "alice@x.com")
	require.NoError(t, err)

	_, err = a.Posts().Create(ctx, user.Name, "still here", "")
	require.NoError(t, err)

	require.NoError(t, a.Session().LogOut(ctx))

	views, err := a.Feed(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].OwnedByCurrentUser)
}
