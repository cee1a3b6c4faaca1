// Package notify delivers guardian emails for attendance events.
package notify

import (
	"context"
	"time"

	"github.com/edalquez/facegate/internal/store"
)

// Notification describes one attendance event to report to a guardian.
type Notification struct {
	GuardianEmail string
	GuardianName  string
	StudentName   string
	YearLevel     string
	LogType       store.LogType
	Timestamp     time.Time
	ImagePath     string // absolute path of the captured frame, optional
}

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
