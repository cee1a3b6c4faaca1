package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher delivers notifications in the background so the capture
// workflow never waits on SMTP.
type Dispatcher struct {
	sender  Sender
	queue   chan Notification
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

// NewDispatcher starts workers draining a bounded queue. A nil sender
// disables delivery; enqueued notifications are logged and dropped.
func NewDispatcher(sender Sender, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan Notification, queueSize),
		timeout: 30 * time.Second,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue hands off a notification without blocking. When the queue is
// full the notification is dropped and logged, attendance logging must
// never stall on mail delivery.
func (d *Dispatcher) Enqueue(n Notification) bool {
	if d.sender == nil {
		log.Printf("mail disabled, skipping notification for %s", n.StudentName)
		return false
	}
	if n.GuardianEmail == "" {
		log.Printf("no guardian email for %s, skipping notification", n.StudentName)
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		log.Printf("notification queue full, dropping notification for %s", n.StudentName)
		return false
	}
}

// Stop drains the queue and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sender.Send(ctx, n); err != nil {
			log.Printf("failed to send notification for %s: %v", n.StudentName, err)
		} else {
			log.Printf("notification sent to %s for %s", n.GuardianEmail, n.StudentName)
		}
		cancel()
	}
}
