// Package session owns the current-user record. Identity is derived from
// the login email; there is no password or token concept.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"minifeed/internal/domain"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any) error
}

// Reloader refreshes the post collection from the store. Logging in picks up
// posts written by other processes since the last save.
type Reloader interface {
	Reload(ctx context.Context) error
}

const currentUserKey = "currentUser"

type Manager struct {
	store   Store
	feed    Reloader
	log     *slog.Logger
	current *domain.User
}

func New(store Store, feed Reloader, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		feed:  feed,
		log:   log,
	}
}

// Load restores the persisted user. A stored null or malformed record means
// logged out, never an error.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := m.store.Get(ctx, currentUserKey)
	if err != nil {
		return fmt.Errorf("failed to read current user: %w", err)
	}

	m.current = nil

	if len(raw) == 0 {
		return nil
	}

	var user *domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		m.log.WarnContext(ctx, "Stored user is malformed, treating as logged out",
			"error", err)

		return nil
	}

	if user != nil && user.Email != "" {
		m.current = user
	}

	return nil
}

// SignUp constructs and persists a user from raw name and email. A blank
// name falls back to the email's local part.
func (m *Manager) SignUp(ctx context.Context, name, email string) (domain.User, error) {
	user, err := domain.UserFromEmail(email)
	if err != nil {
		return domain.User{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}

	if err := m.store.Set(ctx, currentUserKey, user); err != nil {
		return domain.User{}, fmt.Errorf("failed to persist current user: %w", err)
	}

	m.current = &user

	return user, nil
}

// LogIn derives the user from the email, persists it, and reloads the post
// collection so the session starts from the latest stored state.
func (m *Manager) LogIn(ctx context.Context, email string) (domain.User, error) {
	user, err := domain.UserFromEmail(email)
	if err != nil {
		return domain.User{}, err
	}

	if err := m.store.Set(ctx, currentUserKey, user); err != nil {
		return domain.User{}, fmt.Errorf("failed to persist current user: %w", err)
	}

	m.current = &user

	if err := m.feed.Reload(ctx); err != nil {
		return domain.User{}, fmt.Errorf("failed to reload posts: %w", err)
	}

	return user, nil
}

// LogOut clears the current user and persists the clear. Posts are kept.
func (m *Manager) LogOut(ctx context.Context) error {
	m.current = nil

	if err := m.store.Set(ctx, currentUserKey, nil); err != nil {
		return fmt.Errorf("failed to persist current user: %w", err)
	}

	return nil
}

// Current returns the logged-in user, or nil.
func (m *Manager) Current() *domain.User {
	return m.current
}
