package service

import (
	"context"

	"github.com/dang0801205/volunteerhub-sub000/internal/notify"
)

// Notifier is the fire-and-forget side channel informed after state
// changes.  Implementations must never block for long and must swallow
// delivery failures; emission happens after the owning transaction has
// committed and is not part of any operation's contract.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

// discardNotifier drops every notification.  Used when no broker is
// configured and in tests.
type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, notify.Notification) {}

// DiscardNotifier returns a Notifier that drops everything.
func DiscardNotifier() Notifier { return discardNotifier{} }
