package memory

import (
	"context"
	"sync"

	appoutbox "stayinn/internal/app/outbox"
)

// Outbox keeps event records in memory until flushed. An optional Sink
// receives flushed records, which lets the in-process notification
// projector run without a broker.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	Sink    func(ctx context.Context, record appoutbox.EventRecord) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	sink := o.Sink
	o.mu.Unlock()
	if sink == nil {
		return nil
	}
	for _, rec := range pending {
		if err := sink(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
