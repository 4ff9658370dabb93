package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// Column widths of outbox_events.
const (
	maxRequestIDLength   = 64
	maxAggregateIDLength = 64
	maxErrorMessageBytes = 500
)

// OutboxEvent is one lifecycle notification waiting in outbox_events for the
// relay worker. Payload holds the JSON body published to Topic.
type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

// NewPendingEvent marshals payload into a pending outbox row.
func NewPendingEvent(requestID, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal outbox payload: %w", err)
	}

	event := OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       data,
		Status:        OutboxStatusPending,
	}
	if err := ValidateOutboxEvent(event); err != nil {
		return OutboxEvent{}, err
	}
	return event, nil
}

// ValidateOutboxEvent reports every field the insert would reject.
func ValidateOutboxEvent(event OutboxEvent) error {
	var errs []error
	if event.ID == "" {
		errs = append(errs, errors.New("outbox id is required"))
	}
	if event.Topic == "" {
		errs = append(errs, errors.New("outbox topic is required"))
	}
	switch {
	case event.AggregateID == "":
		errs = append(errs, errors.New("outbox aggregate id is required"))
	case len(event.AggregateID) > maxAggregateIDLength:
		errs = append(errs, fmt.Errorf("outbox aggregate id exceeds %d bytes", maxAggregateIDLength))
	}
	if len(event.RequestID) > maxRequestIDLength {
		errs = append(errs, fmt.Errorf("outbox request id exceeds %d bytes", maxRequestIDLength))
	}
	if !json.Valid(event.Payload) {
		errs = append(errs, errors.New("outbox payload must be a JSON document"))
	}
	if event.Status != OutboxStatusPending && event.Status != OutboxStatusSent && event.Status != OutboxStatusFailed {
		errs = append(errs, fmt.Errorf("invalid outbox status: %q", event.Status))
	}
	return errors.Join(errs...)
}
