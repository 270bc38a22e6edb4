// Package ui is the interactive terminal front end of the feed. It owns the
// event loop, key handling and painting; every state change goes through the
// application core and comes back as a fresh view-model list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"minifeed/internal/app"
	"minifeed/internal/domain"
	"minifeed/internal/render"
	"minifeed/internal/share"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeCompose
	modeComment
	modeEdit
)

// searchDebounce is how long the search box stays quiet before the filter
// is applied. Filtering is cheap; this only coalesces keystrokes.
const searchDebounce = 300 * time.Millisecond

type searchDebounceMsg struct{ seq int }

type Model struct {
	ctx    context.Context
	app    *app.App
	sharer *share.Sharer
	log    *slog.Logger

	input    textinput.Model
	viewport viewport.Model
	styles   Styles

	mode      mode
	views     []render.PostView
	selected  int
	filter    string
	status    string
	width     int
	height    int
	ready     bool
	searchSeq int
	editID    int64
}

func NewModel(ctx context.Context, a *app.App, log *slog.Logger) Model {
	input := textinput.New()
	input.CharLimit = 500
	input.Width = 60

	m := Model{
		ctx:    ctx,
		app:    a,
		sharer: &share.Sharer{},
		log:    log,
		input:  input,
		styles: StylesFor(a.DarkMode()),
		width:  defaultWidth,
	}
	m.refresh()

	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := max(msg.Height-5, 3)
		if m.ready {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		} else {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		}
		m.repaint()

		return m, nil

	case RefreshMsg:
		m.refresh()

		return m, nil

	case searchDebounceMsg:
		if msg.seq == m.searchSeq && m.mode == modeSearch {
			m.filter = m.input.Value()
			m.refresh()
		}

		return m, nil

	case tea.KeyMsg:
		if m.mode == modeBrowse {
			return m.updateBrowse(msg)
		}

		return m.updateInput(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(m.views)-1 {
			m.selected++
			m.repaint()
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
			m.repaint()
		}

	case "r":
		m.refresh()

	case "t":
		dark, err := m.app.ToggleDarkMode(m.ctx)
		if err != nil {
			m.status = err.Error()
		}
		m.styles = StylesFor(dark)
		m.repaint()

	case "l":
		m.toggleLike()

	case "d":
		m.deleteSelected()

	case "s":
		m.shareSelected()

	case "/":
		m.enterInput(modeSearch, "Search posts...", m.filter)

	case "p":
		m.enterInput(modeCompose, "What's on your mind?", "")

	case "c":
		if v := m.selectedView(); v != nil {
			m.editID = v.ID
			m.enterInput(modeComment, "Write a comment...", "")
		}

	case "e":
		v := m.selectedView()
		if v == nil {
			break
		}
		if !v.OwnedByCurrentUser {
			m.status = "Only the author can edit"
			break
		}
		m.editID = v.ID
		m.enterInput(modeEdit, "Edit post...", v.Text)

	case "esc":
		if m.filter != "" {
			m.filter = ""
			m.refresh()
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Cancelled input. For an edit this means "no change", which is
		// different from submitting an empty string.
		m.leaveInput()

		return m, nil

	case "enter":
		m.submitInput()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.mode == modeSearch {
		m.searchSeq++
		seq := m.searchSeq

		return m, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{seq: seq}
		}))
	}

	return m, cmd
}

func (m *Model) submitInput() {
	text := m.input.Value()

	switch m.mode {
	case modeSearch:
		m.filter = text
		m.leaveInput()
		m.refresh()

		return

	case modeCompose:
		user := m.currentUser()
		if user == nil {
			return
		}

		if _, err := m.app.Posts().Create(m.ctx, user.Name, text, ""); err != nil {
			m.reportError(err)

			return
		}
		m.status = "Published"

	case modeComment:
		user := m.currentUser()
		if user == nil {
			return
		}

		if err := m.app.Posts().AddComment(m.ctx, m.editID, user.Name, text); err != nil {
			m.reportError(err)

			return
		}

	case modeEdit:
		user := m.currentUser()
		if user == nil {
			return
		}

		if err := m.app.Posts().EditText(m.ctx, m.editID, &text, user.Name); err != nil {
			m.reportError(err)

			return
		}
	}

	m.leaveInput()
	m.refresh()
}

func (m *Model) toggleLike() {
	user := m.currentUser()
	v := m.selectedView()
	if user == nil || v == nil {
		return
	}

	if err := m.app.Posts().ToggleLike(m.ctx, v.ID, user.Name); err != nil {
		m.reportError(err)

		return
	}
	m.refresh()
}

func (m *Model) deleteSelected() {
	user := m.currentUser()
	v := m.selectedView()
	if user == nil || v == nil {
		return
	}

	if err := m.app.Posts().Delete(m.ctx, v.ID, user.Name); err != nil {
		m.reportError(err)

		return
	}
	m.refresh()
}

func (m *Model) shareSelected() {
	v := m.selectedView()
	if v == nil {
		return
	}

	if err := m.sharer.Share("minifeed", v.Text, m.app.Config().ShareURL); err != nil {
		m.reportError(err)

		return
	}
	m.status = "Post text copied"
}

func (m *Model) enterInput(target mode, placeholder, value string) {
	m.mode = target
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) currentUser() *domain.User {
	user := m.app.Session().Current()
	if user == nil {
		m.status = "Not logged in. Run: minifeed login <email>"
	}

	return user
}

func (m *Model) selectedView() *render.PostView {
	if m.selected < 0 || m.selected >= len(m.views) {
		return nil
	}

	return &m.views[m.selected]
}

func (m *Model) reportError(err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		m.status = "Text cannot be empty"
	case errors.Is(err, domain.ErrNotAuthor):
		m.status = "Only the author can do that"
	default:
		m.log.ErrorContext(m.ctx, "UI action failed",
			"error", err)
		m.status = err.Error()
	}
}

// refresh reloads the collection from the store and repaints. This is the
// reload-before-render contract; external writers become visible here.
func (m *Model) refresh() {
	views, err := m.app.Feed(m.ctx, m.filter)
	if err != nil {
		m.reportError(err)

		return
	}

	m.views = views
	if m.selected >= len(m.views) {
		m.selected = len(m.views) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.repaint()
}

// repaint re-renders the current views without touching the store.
func (m *Model) repaint() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(FormatFeed(m.views, m.styles, m.width, m.selected))
}

func (m Model) View() string {
	header := m.styles.Author.Render("minifeed")
	if user := m.app.Session().Current(); user != nil {
		header += m.styles.Meta.Render("  @" + user.Name)
	}
	if m.filter != "" {
		header += m.styles.Meta.Render(fmt.Sprintf("  filter: %q", m.filter))
	}

	body := "loading..."
	if m.ready {
		body = m.viewport.View()
	}

	footer := m.styles.Help.Render(
		"j/k move · l like · c comment · p post · e edit · d delete · s share · / search · t theme · q quit",
	)
	if m.mode != modeBrowse {
		footer = m.input.View()
	}

	status := ""
	if m.status != "" {
		status = m.styles.Status.Render(m.status)
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, status, footer)
}

// Run drives the interactive UI until quit, refreshing on store-file changes
// and on the configured cron fallback.
func Run(ctx context.Context, a *app.App, log *slog.Logger) error {
	program := tea.NewProgram(
		NewModel(ctx, a, log),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	refresher, err := NewRefresher(
		a.Config().DBPath,
		a.Config().RefreshSpec,
		func(msg any) { program.Send(msg) },
		log,
	)
	if err != nil {
		return err
	}

	if err := refresher.Start(ctx); err != nil {
		return err
	}
	defer refresher.Stop()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}

	return nil
}
