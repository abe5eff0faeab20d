package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for the identity domain.
// Password holds a bcrypt hash and is never serialized out.
//
// Followers, Following and LikedPosts are denormalized edge sets. They are
// mutated only through the set primitives of the repository, never by
// saving the whole record.
type User struct {
	ID         string
	Username   string
	Email      string
	Password   string
	FullName   string
	Bio        string
	Link       string
	ProfileImg string
	CoverImg   string
	Followers  []string
	Following  []string
	LikedPosts []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserSetField names one of the relationship sets owned by a User.
type UserSetField string

const (
	UserFollowers  UserSetField = "followers"
	UserFollowing  UserSetField = "following"
	UserLikedPosts UserSetField = "liked_posts"
)

// Valid reports whether f is a known set field.
func (f UserSetField) Valid() bool {
	switch f {
	case UserFollowers, UserFollowing, UserLikedPosts:
		return true
	}
	return false
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id string) bool {
	return slices.Contains(u.Following, id)
}

// HasFollower reports whether id is in u's followers.
func (u *User) HasFollower(id string) bool {
	return slices.Contains(u.Followers, id)
}

// HasLiked reports whether u has the post in its liked set.
func (u *User) HasLiked(postID string) bool {
	return slices.Contains(u.LikedPosts, postID)
}

// Set returns the current contents of the named set.
func (u *User) Set(f UserSetField) []string {
	switch f {
	case UserFollowers:
		return u.Followers
	case UserFollowing:
		return u.Following
	case UserLikedPosts:
		return u.LikedPosts
	}
	return nil
}
