// Package app wires the store, post repository, session and theme flag into
// one explicit state object with a defined lifecycle: constructed from the
// persistent store at process start, closed on shutdown. Every mutation
// persists synchronously, so closing only releases the store.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"minifeed/internal/config"
	"minifeed/internal/render"
	"minifeed/internal/repository"
	"minifeed/internal/session"
	"minifeed/internal/store"
)

type App struct {
	cfg      config.Config
	store    *store.Store
	posts    *repository.Repository
	session  *session.Manager
	log      *slog.Logger
	darkMode bool
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	st, err := store.New(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	posts := repository.New(st, log)
	sess := session.New(st, posts, log)

	a := &App{
		cfg:     cfg,
		store:   st,
		posts:   posts,
		session: sess,
		log:     log,
	}

	if err := sess.Load(ctx); err != nil {
		return nil, err
	}

	if err := posts.Reload(ctx); err != nil {
		return nil, err
	}

	a.darkMode = a.loadDarkMode(ctx)

	return a, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) Config() config.Config { return a.cfg }

func (a *App) Store() *store.Store { return a.store }

func (a *App) Posts() *repository.Repository { return a.posts }

func (a *App) Session() *session.Manager { return a.session }

// Feed reloads the collection from the store and renders it for the current
// user. The reload is what makes writes from other processes visible, so
// this is the only path handed to the presentation layer.
func (a *App) Feed(ctx context.Context, filter string) ([]render.PostView, error) {
	if err := a.posts.Reload(ctx); err != nil {
		return nil, err
	}

	return render.Feed(a.posts.Posts(), a.session.Current(), filter), nil
}

func (a *App) DarkMode() bool {
	return a.darkMode
}

// ToggleDarkMode flips and persists the theme flag, returning the new value.
func (a *App) ToggleDarkMode(ctx context.Context) (bool, error) {
	a.darkMode = !a.darkMode

	if err := a.store.Set(ctx, store.KeyDarkMode, a.darkMode); err != nil {
		return a.darkMode, fmt.Errorf("failed to persist theme flag: %w", err)
	}

	return a.darkMode, nil
}

// loadDarkMode reads the persisted flag, accepting the legacy encoding
// where the value is the string "true" or "false" rather than a boolean.
func (a *App) loadDarkMode(ctx context.Context) bool {
	raw, err := a.store.Get(ctx, store.KeyDarkMode)
	if err != nil {
		a.log.WarnContext(ctx, "Failed to read theme flag, defaulting to light",
			"error", err)

		return false
	}

	if len(raw) == 0 {
		return false
	}

	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag
	}

	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		flag, _ := strconv.ParseBool(legacy)

		return flag
	}

	return false
}
