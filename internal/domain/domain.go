// Package domain holds the record types of the feed and the error kinds
// shared by every layer above the store.
package domain

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrEmptyEmail = errors.New("email is empty")
	ErrEmptyText  = errors.New("text is empty")
	ErrNotAuthor  = errors.New("requester is not the author")
)

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserFromEmail derives the user name from the local part of the email,
// or from the whole string when there is no "@".
func UserFromEmail(email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrEmptyEmail
	}

	name, _, _ := strings.Cut(email, "@")

	return User{Name: name, Email: email}, nil
}

// Comment is immutable once created and append-only within its parent post.
type Comment struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Post mirrors the persisted JSON layout. ID is the creation time in
// milliseconds and doubles as the descending sort key of the feed.
// Likes must equal len(LikesBy) after every mutation.
type Post struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	ImageData string    `json:"imageData"`
	Timestamp int64     `json:"timestamp"`
	Likes     int       `json:"likes"`
	LikesBy   []string  `json:"likesBy"`
	Comments  []Comment `json:"comments"`
}

func (p *Post) LikedBy(username string) bool {
	return slices.Contains(p.LikesBy, username)
}

// Matches reports whether the post text or author contains term,
// case-insensitively. An empty term matches everything.
func (p *Post) Matches(term string) bool {
	term = strings.ToLower(term)

	return strings.Contains(strings.ToLower(p.Text), term) ||
		strings.Contains(strings.ToLower(p.Author), term)
}
