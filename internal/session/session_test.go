package session_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minifeed/internal/domain"
	"minifeed/internal/session"
)

type memStore struct{ values map[string][]byte }

func newMemStore() *memStore {
	return &memStore{values: map[string][]byte{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	return s.values[key], nil
}

func (s *memStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.values[key] = raw

	return nil
}

type countingReloader struct{ calls int }

func (r *countingReloader) Reload(context.Context) error {
	r.calls++

	return nil
}

func TestLogInDerivesNameFromEmail(t *testing.T) {
	tests := []struct {
		email    string
		wantName string
	}{
		{"alice@x.com", "alice"},
		{"bob.smith@example.org", "bob.smith"},
		{"noatsign", "noatsign"},
		{"first@second@third", "first"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			reloader := &countingReloader{}
			m := session.New(newMemStore(), reloader, slog.Default())

			user, err := m.LogIn(context.Background(), tt.email)
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, user.Name)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, 1, reloader.calls, "login must reload the post collection")
		})
	}
}

func TestLogInRejectsEmptyEmail(t *testing.T) {
	reloader := &countingReloader{}
	m := session.New(newMemStore(), reloader, slog.Default())

	_, err := m.LogIn(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrEmptyEmail)
	assert.Nil(t, m.Current())
	assert.Zero(t, reloader.calls)
}

func TestSignUp(t *testing.T) {
	m := session.New(newMemStore(), &countingReloader{}, slog.Default())
	ctx := context.Background()

	user, err := m.SignUp(ctx, "Alice Liddell", "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", user.Name)

	// A blank name falls back to the email's local part.
	user, err = m.SignUp(ctx, "  ", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Name)

	_, err = m.SignUp(ctx, "Carol", "")
	require.ErrorIs(t, err, domain.ErrEmptyEmail)
}

func TestLogOutClearsPersistedUser(t *testing.T) {
	store := newMemStore()
	m := session.New(store, &countingReloader{}, slog.Default())
	ctx := context.Background()

	_, err := m.LogIn(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, m.Current())

	require.NoError(t, m.LogOut(ctx))
	assert.Nil(t, m.Current())

	// A fresh manager over the same store must also come up logged out.
	fresh := session.New(store, &countingReloader{}, slog.Default())
	require.NoError(t, fresh.Load(ctx))
	assert.Nil(t, fresh.Current())
}

func TestLoadRestoresUserAndRecoversFromGarbage(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := session.New(store, &countingReloader{}, slog.Default())
	_, err := first.LogIn(ctx, "alice@x.com")
	require.NoError(t, err)

	second := session.New(store, &countingReloader{}, slog.Default())
	require.NoError(t, second.Load(ctx))
	require.NotNil(t, second.Current())
	assert.Equal(t, "alice", second.Current().Name)

	store.values["currentUser"] = []byte("{broken")
	third := session.New(store, &countingReloader{}, slog.Default())
	require.NoError(t, third.Load(ctx))
	assert.Nil(t, third.Current())
}
