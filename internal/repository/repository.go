// Package repository owns the in-memory post collection and keeps it
// mirrored into the persistent store after every mutation. The store is the
// source of truth across processes: Reload replaces the whole collection and
// concurrent writers are last-write-wins at collection granularity.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"minifeed/internal/domain"
)

// Store is the slice of the persistent store the repository needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any) error
}

const postsKey = "posts"

type Repository struct {
	store  Store
	log    *slog.Logger
	posts  []domain.Post
	lastID int64
	now    func() time.Time
}

func New(store Store, log *slog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Reload replaces the in-memory collection with the store's current value.
// Absent or malformed data yields an empty collection, never an error. This
// must run before any render so that writes from other processes show up.
func (r *Repository) Reload(ctx context.Context) error {
	raw, err := r.store.Get(ctx, postsKey)
	if err != nil {
		return fmt.Errorf("failed to read posts: %w", err)
	}

	var posts []domain.Post
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &posts); err != nil {
			r.log.WarnContext(ctx, "Stored posts are malformed, starting empty",
				"error", err)

			posts = nil
		}
	}

	r.lastID = 0
	for i := range posts {
		// Repair the derived counter in case an older writer left it stale.
		posts[i].Likes = len(posts[i].LikesBy)

		if posts[i].ID > r.lastID {
			r.lastID = posts[i].ID
		}
	}

	r.posts = posts

	return nil
}

// Posts returns a copy of the in-memory collection in insertion order.
func (r *Repository) Posts() []domain.Post {
	return slices.Clone(r.posts)
}

// Create appends a new post authored by author and persists the collection.
// Text blank after trimming is rejected with domain.ErrEmptyText and nothing
// is mutated.
func (r *Repository) Create(
	ctx context.Context,
	author string,
	text string,
	imageData string,
) (domain.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Post{}, domain.ErrEmptyText
	}

	id := r.nextID()
	post := domain.Post{
		ID:        id,
		Author:    author,
		Text:      text,
		ImageData: imageData,
		Timestamp: id,
		LikesBy:   []string{},
		Comments:  []domain.Comment{},
	}

	r.posts = append(r.posts, post)

	if err := r.persist(ctx); err != nil {
		return domain.Post{}, err
	}

	return post, nil
}

// ToggleLike adds username to the post's like set, or removes it when
// already present, and recomputes the like counter. An unknown post ID is a
// silent no-op.
func (r *Repository) ToggleLike(ctx context.Context, postID int64, username string) error {
	post := r.find(ctx, postID)
	if post == nil {
		return nil
	}

	if i := slices.Index(post.LikesBy, username); i >= 0 {
		post.LikesBy = slices.Delete(post.LikesBy, i, i+1)
	} else {
		post.LikesBy = append(post.LikesBy, username)
	}
	post.Likes = len(post.LikesBy)

	return r.persist(ctx)
}

// AddComment appends a comment to the post. An unknown post ID is a silent
// no-op; blank text is rejected with domain.ErrEmptyText.
func (r *Repository) AddComment(ctx context.Context, postID int64, author, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptyText
	}

	post := r.find(ctx, postID)
	if post == nil {
		return nil
	}

	post.Comments = append(post.Comments, domain.Comment{
		Author:    author,
		Text:      text,
		Timestamp: r.now().UnixMilli(),
	})

	return r.persist(ctx)
}

// EditText replaces the post text. A nil newText is a cancelled edit and a
// no-op, distinct from an empty string which is domain.ErrEmptyText. Only
// the author may edit; an unknown post ID is a silent no-op.
func (r *Repository) EditText(
	ctx context.Context,
	postID int64,
	newText *string,
	requester string,
) error {
	if newText == nil {
		return nil
	}

	post := r.find(ctx, postID)
	if post == nil {
		return nil
	}

	if post.Author != requester {
		return domain.ErrNotAuthor
	}

	text := strings.TrimSpace(*newText)
	if text == "" {
		return domain.ErrEmptyText
	}

	post.Text = text

	return r.persist(ctx)
}

// Delete removes the post. Only the author may delete; an unknown post ID is
// a silent no-op.
func (r *Repository) Delete(ctx context.Context, postID int64, requester string) error {
	i := slices.IndexFunc(r.posts, func(p domain.Post) bool { return p.ID == postID })
	if i < 0 {
		r.log.DebugContext(ctx, "Post not found",
			"postID", postID)

		return nil
	}

	if r.posts[i].Author != requester {
		return domain.ErrNotAuthor
	}

	r.posts = slices.Delete(r.posts, i, i+1)

	return r.persist(ctx)
}

// Search returns the posts whose text or author contains term,
// case-insensitively, in insertion order. It never mutates state.
func (r *Repository) Search(term string) []domain.Post {
	var matches []domain.Post
	for i := range r.posts {
		if r.posts[i].Matches(term) {
			matches = append(matches, r.posts[i])
		}
	}

	return matches
}

func (r *Repository) find(ctx context.Context, postID int64) *domain.Post {
	for i := range r.posts {
		if r.posts[i].ID == postID {
			return &r.posts[i]
		}
	}

	r.log.DebugContext(ctx, "Post not found",
		"postID", postID)

	return nil
}

func (r *Repository) persist(ctx context.Context) error {
	posts := r.posts
	if posts == nil {
		// The persisted collection is always a JSON array, never null.
		posts = []domain.Post{}
	}

	if err := r.store.Set(ctx, postsKey, posts); err != nil {
		return fmt.Errorf("failed to persist posts: %w", err)
	}

	return nil
}

// nextID is the creation timestamp in milliseconds, bumped past the last
// issued or loaded ID so that two creations within the same millisecond
// cannot collide.
func (r *Repository) nextID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id

	return id
}
