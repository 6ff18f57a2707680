package models

import "time"

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	// NotificationTypeFollowRequest is sent to the target of a follow
	// request. Exactly one exists per pending request and it is removed
	// whenever the request is resolved.
	NotificationTypeFollowRequest NotificationType = "FollowRequest"
	// NotificationTypeFollowAccepted is sent to the requester when the
	// target accepts.
	NotificationTypeFollowAccepted NotificationType = "FollowAccepted"
)

// Notification is a pull-read notification row. There is no push
// delivery; clients poll GET /api/notifications.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(32);not null;index" json:"type"`
	RelatedID uint             `gorm:"index" json:"related_id"`
	Message   string           `gorm:"not null" json:"message"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
