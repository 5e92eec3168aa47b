// Package notify projects rating events into host-facing notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	appoutbox "stayinn/internal/app/outbox"
	domainacc "stayinn/internal/domain/accommodations"
	domainrat "stayinn/internal/domain/ratings"
)

const (
	eventAccommodationRated = "rating.accommodation_rated"
	eventHostRated          = "rating.host_rated"
)

// Projector writes one notification per rating event.
type Projector struct {
	Notifications domainrat.NotificationRepository
	Logger        *slog.Logger
}

// Apply inspects the event name and inserts the matching notification.
// Unknown events are skipped.
func (p *Projector) Apply(ctx context.Context, name string, payload []byte) error {
	var text string
	var host domainacc.HostID
	var at time.Time
	switch name {
	case eventAccommodationRated:
		var ev ratedPayload
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		text = fmt.Sprintf("User %s rated one of your accommodations %d stars", ev.RaterUsername, ev.Rate)
		host = domainacc.HostID(ev.HostID)
		at = ev.At
	case eventHostRated:
		var ev ratedPayload
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		text = fmt.Sprintf("User %s rated you %d stars", ev.RaterUsername, ev.Rate)
		host = domainacc.HostID(ev.HostID)
		at = ev.At
	default:
		return nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	notification := &domainrat.Notification{
		ID:     uuid.NewString(),
		HostID: host,
		Text:   text,
		Time:   at,
	}
	if err := p.Notifications.Insert(ctx, notification); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Info("host notified", "host_id", host, "event", name)
	}
	return nil
}

// OutboxSink adapts the projector to the in-memory outbox flush hook.
func (p *Projector) OutboxSink(ctx context.Context, record appoutbox.EventRecord) error {
	return p.Apply(ctx, record.Name, record.Payload)
}

type ratedPayload struct {
	RatingID      string    `json:"rating_id"`
	HostID        string    `json:"host_id"`
	RaterID       string    `json:"rater_id"`
	RaterUsername string    `json:"rater_username"`
	Rate          int       `json:"rate"`
	At            time.Time `json:"at"`
}

// ConsumerHandler feeds broker messages carrying cloudevents envelopes
// into the projector.
type ConsumerHandler struct {
	Projector *Projector
	Logger    *slog.Logger
}

func (h ConsumerHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("undecodable event envelope", "topic", msg.Topic, "error", err)
		}
		// A poison message is skipped, not retried forever.
		return nil
	}
	name := trimVersionSuffix(envelope.Type)
	if err := h.Projector.Apply(ctx, name, envelope.Data); err != nil {
		if h.Logger != nil {
			h.Logger.Error("notification projection failed", "event", name, "error", err)
		}
		return err
	}
	return nil
}

func trimVersionSuffix(eventType string) string {
	const suffix = ".v1"
	if len(eventType) > len(suffix) && eventType[len(eventType)-len(suffix):] == suffix {
		return eventType[:len(eventType)-len(suffix)]
	}
	return eventType
}
