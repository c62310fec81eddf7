package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamTimeout_MatchesUnavailable(t *testing.T) {
	err := fmt.Errorf("create payment intent: %w", ErrUpstreamTimeout)

	assert.True(t, errors.Is(err, ErrUpstreamTimeout))
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.False(t, errors.Is(ErrUpstreamUnavailable, ErrUpstreamTimeout))
}

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("record sale: %w", &UpstreamError{
		Provider: "stripe",
		Message:  "No such payment_intent: 'pi_missing'",
		Err:      ErrUpstreamUnavailable,
	})

	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.Equal(t, "No such payment_intent: 'pi_missing'", UpstreamMessage(err))
	assert.Contains(t, err.Error(), "stripe")
	assert.Empty(t, UpstreamMessage(errors.New("plain")))
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, PaymentMethodCard.Valid())
	assert.True(t, PaymentMethodCash.Valid())
	assert.True(t, PaymentMethodTapToPay.Valid())
	assert.False(t, PaymentMethod("cheque").Valid())

	assert.True(t, PaymentMethodCard.RequiresGateway())
	assert.True(t, PaymentMethodTapToPay.RequiresGateway())
	assert.False(t, PaymentMethodCash.RequiresGateway())
}
