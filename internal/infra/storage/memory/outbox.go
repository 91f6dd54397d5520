package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
)

// Outbox is an in-memory relay queue: Add enqueues, Claim hands entries to
// the worker one at a time.
type Outbox struct {
	mu    sync.Mutex
	queue []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       "NEW",
		NextAttempt: time.Now().UTC(),
	})
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range o.queue {
		if doc.State == "SENT" || doc.State == "CLAIMED" {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = "CLAIMED"
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		return doc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.queue {
		if doc.ID == id {
			doc.State = "SENT"
			doc.SentAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.queue {
		if doc.ID == id {
			doc.State = "FAILED"
			doc.Attempts++
			doc.NextAttempt = next
			doc.LastError = errMsg
			return nil
		}
	}
	return nil
}

// Pending returns the unsent entries, oldest first. Test hook.
func (o *Outbox) Pending() []*infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []*infraoutbox.EventDocument
	for _, doc := range o.queue {
		if doc.State != "SENT" {
			out = append(out, doc)
		}
	}
	return out
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
