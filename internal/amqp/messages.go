package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"posjournal/internal/core"
)

// EventType names a journal change.
type EventType string

const (
	EventSaleRecorded   EventType = "sale.recorded"
	EventJournalCleared EventType = "journal.cleared"
)

var ErrInvalidEvent = errors.New("invalid journal event")

// JournalEvent announces one change to the journal. Sale events carry the
// full transaction so consumers never read the journal back.
type JournalEvent struct {
	Type        EventType         `json:"type"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewSaleRecordedEvent(tx core.Transaction) *JournalEvent {
	return &JournalEvent{
		Type:        EventSaleRecorded,
		Transaction: &tx,
		Timestamp:   time.Now().UTC(),
	}
}

func NewJournalClearedEvent() *JournalEvent {
	return &JournalEvent{
		Type:      EventJournalCleared,
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks that the event type is known and that sale events carry
// their transaction.
func (e *JournalEvent) Validate() error {
	switch e.Type {
	case EventSaleRecorded:
		if e.Transaction == nil || e.Transaction.ID == "" {
			return fmt.Errorf("%w: %s without transaction", ErrInvalidEvent, e.Type)
		}
	case EventJournalCleared:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (e *JournalEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// JournalEventFromJSON decodes and validates an event.
func JournalEventFromJSON(data []byte) (*JournalEvent, error) {
	var e JournalEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
