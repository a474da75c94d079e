package model

import "time"

// NotificationChannel selects the delivery medium.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelInApp NotificationChannel = "inapp"
)

// NotificationStatus describes the outbox state of a queued notice.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification is one queued customer notice. Rows are written in the same
// transaction as the business change they announce and drained by a
// background sender; delivery is best-effort.
type Notification struct {
	ID         int64
	CustomerID int64
	Channel    NotificationChannel
	Template   string
	Payload    map[string]string
	Status     NotificationStatus
	Attempts   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
