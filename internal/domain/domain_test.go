package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minifeed/internal/domain"
)

func TestUserFromEmail(t *testing.T) {
	user, err := domain.UserFromEmail(" alice@x.com ")
	require.NoError(t, err)
	assert.Equal(t, domain.User{Name: "alice", Email: "alice@x.com"}, user)

	user, err = domain.UserFromEmail("plainname")
	require.NoError(t, err)
	assert.Equal(t, "plainname", user.Name)

	_, err = domain.UserFromEmail("  ")
	assert.ErrorIs(t, err, domain.ErrEmptyEmail)
}

func TestPostMatches(t *testing.T) {
	post := domain.Post{Author: "Alice", Text: "Hello World"}

	assert.True(t, post.Matches("world"))
	assert.True(t, post.Matches("ALICE"))
	assert.True(t, post.Matches(""))
	assert.False(t, post.Matches("zebra"))
}

func TestPostLikedBy(t *testing.T) {
	post := domain.Post{LikesBy: []string{"alice", "bob"}}

	assert.True(t, post.LikedBy("alice"))
	assert.False(t, post.LikedBy("carol"))
	assert.False(t, post.LikedBy(""))
}
