package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"minifeed/internal/render"
)

const defaultWidth = 80

// FormatFeed renders the view-model list as styled cards. selected marks one
// card with the accent border; pass a negative index for non-interactive
// output. Post text goes through the markdown renderer matching the theme,
// falling back to plain text when the terminal renderer cannot be built.
func FormatFeed(views []render.PostView, styles Styles, width int, selected int) string {
	if width <= 0 {
		width = defaultWidth
	}

	if len(views) == 0 {
		return styles.Meta.Render("No posts yet.")
	}

	renderer := newBodyRenderer(styles.Theme, width-6)

	var b strings.Builder
	for i := range views {
		card := styles.Card
		if i == selected {
			card = styles.Selected
		}

		b.WriteString(card.Width(width - 2).Render(formatCard(&views[i], styles, renderer)))
		b.WriteString("\n")
	}

	return b.String()
}

func formatCard(v *render.PostView, styles Styles, renderer *glamour.TermRenderer) string {
	var b strings.Builder

	created := time.UnixMilli(v.Timestamp).Format("2 Jan 2006 15:04")
	b.WriteString(styles.Author.Render(v.Author))
	b.WriteString("  ")
	b.WriteString(styles.Time.Render(created))
	if v.OwnedByCurrentUser {
		b.WriteString("  ")
		b.WriteString(styles.Meta.Render("(yours)"))
	}
	b.WriteString("\n")

	b.WriteString(formatBody(v.Text, renderer))
	b.WriteString("\n")

	if v.ImageData != "" {
		b.WriteString(styles.Meta.Render("[image attached]"))
		b.WriteString("\n")
	}

	heart := "♡"
	likes := styles.Meta
	if v.LikedByCurrentUser {
		heart = "♥"
		likes = styles.Liked
	}
	b.WriteString(likes.Render(fmt.Sprintf("%s %d", heart, v.Likes)))
	b.WriteString(styles.Meta.Render(fmt.Sprintf("   💬 %d", len(v.Comments))))
	b.WriteString(styles.Meta.Render(fmt.Sprintf("   #%d", v.ID)))
	b.WriteString("\n")

	for i := range v.Comments {
		c := &v.Comments[i]
		b.WriteString(styles.Author.Render(c.Author))
		b.WriteString(styles.Meta.Render(": " + c.Text))
		b.WriteString("\n")
	}

	for _, link := range v.Links {
		b.WriteString(styles.Meta.Render("→ " + link))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatBody(text string, renderer *glamour.TermRenderer) string {
	if renderer == nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		return text
	}

	return strings.Trim(out, "\n")
}

func newBodyRenderer(theme Theme, wrap int) *glamour.TermRenderer {
	if wrap <= 0 {
		wrap = defaultWidth
	}

	style := "light"
	if theme.IsDark {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}

	return renderer
}
