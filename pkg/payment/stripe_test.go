package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedPayload(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestValidateWebhookAcceptsSignedEvent(t *testing.T) {
	gateway := NewStripeGateway("sk_test_dummy", testWebhookSecret, 30*time.Minute)

	header, body := signedPayload(t, `{
		"id": "evt_123",
		"object": "event",
		"type": "checkout.session.completed",
		"created": 1717000000,
		"data": {"object": {"id": "cs_test_1", "payment_intent": "pi_1", "payment_status": "paid"}}
	}`)

	event, err := gateway.ValidateWebhook(context.Background(), body, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.EventID)
	assert.Equal(t, "checkout.session.completed", event.EventType)
	assert.Equal(t, "cs_test_1", event.Get("id").String())
	assert.Equal(t, "pi_1", event.Get("payment_intent").String())
}

func TestValidateWebhookRejectsBadSignature(t *testing.T) {
	gateway := NewStripeGateway("sk_test_dummy", testWebhookSecret, 30*time.Minute)

	_, body := signedPayload(t, `{"id":"evt_1","object":"event","type":"charge.refunded","data":{"object":{}}}`)

	_, err := gateway.ValidateWebhook(context.Background(), body, "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestValidateWebhookRejectsTamperedBody(t *testing.T) {
	gateway := NewStripeGateway("sk_test_dummy", testWebhookSecret, 30*time.Minute)

	header, _ := signedPayload(t, `{"id":"evt_1","object":"event","type":"charge.refunded","data":{"object":{}}}`)

	_, err := gateway.ValidateWebhook(context.Background(), []byte(`{"id":"evt_2"}`), header)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(10000), ToMinorUnits(100))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(2475), ToMinorUnits(24.745000001))
	assert.Equal(t, 12.34, FromMinorUnits(1234))
}
