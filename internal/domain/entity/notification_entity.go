package entity

import "time"

type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification is an edge from the actor (From) to the recipient (To).
// Only Read ever changes after creation.
type Notification struct {
	ID        string
	Type      NotificationType
	From      string
	To        string
	Read      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
