// Package render turns the post collection into the ordered view-model list
// the presentation layer paints. Rendering is pure: no persistence, no side
// effects, identical inputs produce identical output.
package render

import (
	"slices"

	"mvdan.cc/xurls/v2"

	"minifeed/internal/domain"
)

var linkPattern = xurls.Strict()

// PostView carries every post field plus the flags the presentation layer
// uses to decide which affordances to show.
type PostView struct {
	domain.Post

	LikedByCurrentUser bool
	OwnedByCurrentUser bool
	Links              []string
}

// Feed maps (posts, current user, optional filter) to the view-model list,
// sorted newest-first by ID. A non-empty filter keeps only posts whose text
// or author contains it, case-insensitively.
func Feed(posts []domain.Post, current *domain.User, filter string) []PostView {
	var username string
	if current != nil {
		username = current.Name
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		if filter != "" && !posts[i].Matches(filter) {
			continue
		}

		views = append(views, PostView{
			Post:               posts[i],
			LikedByCurrentUser: posts[i].LikedBy(username),
			OwnedByCurrentUser: current != nil && posts[i].Author == username,
			Links:              linkPattern.FindAllString(posts[i].Text, -1),
		})
	}

	slices.SortFunc(views, func(a, b PostView) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})

	return views
}
