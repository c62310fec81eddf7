package outbox

import (
	"time"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/google/uuid"
)

// Message is an event waiting to be published. It is written in the same database
// transaction as the state change that produced the event.
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	EventType     event.Type          `json:"event_type"`
	AggregateID   string              `json:"aggregate_id"`
	Payload       []byte              `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage stores the full event envelope as payload
func NewMessage(evt *event.Event) (*Message, error) {
	payload, err := evt.Marshal()
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:     evt.ID,
		EventType:   evt.Type,
		AggregateID: evt.AggregateID,
		Payload:     payload,
		Status:      shared.OutboxStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Event decodes the stored envelope
func (m *Message) Event() (*event.Event, error) {
	return event.Decode(m.Payload)
}
