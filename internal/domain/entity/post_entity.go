package entity

import (
	"slices"
	"time"
)

// Post is the aggregate root for the content domain.
// At least one of Text, Img or QuotedPostID is set.
type Post struct {
	ID           string
	UserID       string
	Text         string
	Img          string
	Likes        []string
	Comments     []Comment
	QuotedPostID string // empty when the post quotes nothing
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment is an element of a post's append-only comment sequence.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// IsEmpty reports whether the post carries no content at all.
func (p *Post) IsEmpty() bool {
	return p.Text == "" && p.Img == "" && p.QuotedPostID == ""
}
