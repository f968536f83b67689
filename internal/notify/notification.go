// Package notify defines the notification payloads emitted by the lifecycle
// services and the RabbitMQ transport that delivers them.  Notifications are
// a fire-and-forget side channel: they are published after the owning
// transaction commits and their failure never fails the operation.
package notify

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Severity levels carried in a notification payload.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Well-known targets.  User-scoped targets use UserTarget; room-scoped
// broadcasts use EventTarget or the admins room.
const AdminsRoom = "admins"

// Notification is the message published to the notifications queue.  Target
// is either a user ("user:<id>") or a room ("event:<id>", "admins").
type Notification struct {
	ID        string    `json:"id"`
	Target    string    `json:"target"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a Notification with a fresh UUID and UTC timestamp.
func New(target, title, message, severity, link string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Target:    target,
		Title:     title,
		Message:   message,
		Severity:  severity,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
}

// UserTarget formats a user-scoped delivery target.
func UserTarget(userID uint64) string {
	return "user:" + strconv.FormatUint(userID, 10)
}

// EventTarget formats an event-room delivery target.
func EventTarget(eventID uint64) string {
	return "event:" + strconv.FormatUint(eventID, 10)
}
