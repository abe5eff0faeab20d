package application

import (
	"time"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
)

// UserView is every user field except the credential.
type UserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	ProfileImg string    `json:"profile_img"`
	CoverImg   string    `json:"cover_img"`
	Followers  []string  `json:"followers"`
	Following  []string  `json:"following"`
	LikedPosts []string  `json:"liked_posts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserSummary is the compact author shape embedded in comments and quotes.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	ProfileImg string `json:"profile_img"`
}

type CommentView struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	User      *UserSummary `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

// QuotedPostView is the one-level-deep rendering of a quoted post.
type QuotedPostView struct {
	ID        string       `json:"id"`
	User      *UserSummary `json:"user"`
	Text      string       `json:"text"`
	Img       string       `json:"img"`
	Likes     []string     `json:"likes"`
	CreatedAt time.Time    `json:"created_at"`
}

// PostView is a fully hydrated post. QuotedPost is nil when the post quotes
// nothing or the quoted post no longer exists.
type PostView struct {
	ID         string          `json:"id"`
	User       *UserView       `json:"user"`
	Text       string          `json:"text"`
	Img        string          `json:"img"`
	Likes      []string        `json:"likes"`
	Comments   []CommentView   `json:"comments"`
	QuotedPost *QuotedPostView `json:"quoted_post"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NotificationUser is the actor shape attached to a notification.
type NotificationUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

type NotificationView struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	From      *NotificationUser `json:"from"`
	To        string            `json:"to"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func NewUserView(u *entity.User) UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Bio:        u.Bio,
		Link:       u.Link,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
		Followers:  nonNil(u.Followers),
		Following:  nonNil(u.Following),
		LikedPosts: nonNil(u.LikedPosts),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func newUserSummary(u *entity.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, ProfileImg: u.ProfileImg}
}
