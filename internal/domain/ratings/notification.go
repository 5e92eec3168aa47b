package ratings

import (
	"context"
	"time"

	"stayinn/internal/domain/accommodations"
)

// Notification is the host-facing record produced when a guest rates the
// host or one of their accommodations.
type Notification struct {
	ID     string
	HostID accommodations.HostID
	Text   string
	Time   time.Time
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *Notification) error
	// ListByHost returns notifications in insertion order, most recent first.
	ListByHost(ctx context.Context, hostID accommodations.HostID) ([]*Notification, error)
}
