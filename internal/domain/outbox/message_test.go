package outbox

import (
	"testing"
	"time"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		evt, err := event.New(event.TypeListingPaid, "listing-1", "corr-1", event.ListingPaid{
			ListingID: "listing-1",
			OwnerID:   "owner-1",
			SessionID: "cs_1",
			Amount:    decimal.RequireFromString("5.00"),
			Currency:  "aud",
		})
		require.NoError(t, err)

		beforeCreation := time.Now()
		msg, err := NewMessage(evt)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, msg)

		assert.Equal(t, evt.ID, msg.EventID)
		assert.Equal(t, event.TypeListingPaid, msg.EventType)
		assert.Equal(t, "listing-1", msg.AggregateID)
		assert.Equal(t, shared.OutboxStatusPending, msg.Status)
		assert.Equal(t, 0, msg.Attempts)
		assert.Nil(t, msg.LastAttemptAt)
		assert.WithinDuration(t, beforeCreation, msg.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)

		decoded, err := msg.Event()
		require.NoError(t, err)
		assert.Equal(t, evt.ID, decoded.ID)
		assert.Equal(t, "corr-1", decoded.CorrelationID)

		paid, err := decoded.ListingPaid()
		require.NoError(t, err)
		assert.Equal(t, "owner-1", paid.OwnerID)
	})
}

func TestMessage_StateTransitions(t *testing.T) {
	initialTime := time.Now().Add(-time.Hour)

	t.Run("IncrementAttempts", func(t *testing.T) {
		msg := &Message{Attempts: 1, LastAttemptAt: &initialTime}
		msg.IncrementAttempts()

		assert.Equal(t, 2, msg.Attempts)
		require.NotNil(t, msg.LastAttemptAt)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
	})

	t.Run("MarkAsProcessed", func(t *testing.T) {
		msg := &Message{Status: shared.OutboxStatusPending, LastAttemptAt: &initialTime}
		msg.MarkAsProcessed()

		assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
	})

	t.Run("MarkAsFailed", func(t *testing.T) {
		msg := &Message{Status: shared.OutboxStatusPending}
		msg.MarkAsFailed()

		assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
		assert.NotNil(t, msg.LastAttemptAt)
	})
}

func TestMessage_EventRejectsGarbage(t *testing.T) {
	msg := &Message{Payload: []byte("{broken")}

	_, err := msg.Event()
	assert.ErrorIs(t, err, event.ErrInvalidEvent)
}

func TestErrMessageNotFound(t *testing.T) {
	assert.Equal(t, "outbox message not found: 42", ErrMessageNotFound{ID: 42}.Error())
}
