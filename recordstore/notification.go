package recordstore

import (
	"context"
	"time"
)

const (
	fieldNotifEmail   = "User Email"
	fieldNotifKind    = "Kind"
	fieldNotifMessage = "Message"
	fieldNotifSentAt  = "Sent At"
)

type NotificationTable struct {
	c    *Client
	name string
}

func NewNotificationTable(c *Client, name string) *NotificationTable {
	return &NotificationTable{c: c, name: name}
}

// Create writes one notification record. Callers treat this as
// best-effort and only log failures.
func (t *NotificationTable) Create(ctx context.Context, email, kind, message string) error {
	_, err := t.c.Create(ctx, t.name, map[string]any{
		fieldNotifEmail:   email,
		fieldNotifKind:    kind,
		fieldNotifMessage: message,
		fieldNotifSentAt:  time.Now().UTC().Format(time.RFC3339),
	})
	return err
}
