package domain

import "time"

// Notification severities, mirrored by the client's toast styling.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

var notificationTypes = map[string]bool{
	NotificationInfo:    true,
	NotificationSuccess: true,
	NotificationWarning: true,
	NotificationError:   true,
}

// ValidNotificationType reports whether t is a known severity.
func ValidNotificationType(t string) bool {
	return notificationTypes[t]
}

// Notification is one entry in a user's in-app feed. Broadcast events
// create one row per user, so read state is tracked individually.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
