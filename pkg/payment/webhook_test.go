package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test"

func TestVerifyAndParseEvent_ValidSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_intent":"pi_1"}}}`)
	header := SignPayload(payload, time.Now().Unix(), testSecret)

	event, err := VerifyAndParseEvent(payload, header, testSecret, DefaultSignatureTolerance)

	assert.NoError(t, err)
	if assert.NotNil(t, event) {
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, EventCheckoutCompleted, event.Type)

		var checkout CheckoutObject
		assert.NoError(t, json.Unmarshal(event.Data.Object, &checkout))
		assert.Equal(t, "cs_1", checkout.ID)
		assert.Equal(t, "pi_1", checkout.PaymentIntent)
	}
}

func TestVerifyAndParseEvent_WrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := SignPayload(payload, time.Now().Unix(), "whsec_other")

	_, err := VerifyAndParseEvent(payload, header, testSecret, DefaultSignatureTolerance)

	assert.Error(t, err)
}

func TestVerifyAndParseEvent_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := SignPayload(payload, time.Now().Unix(), testSecret)

	tampered := []byte(`{"id":"evt_2","type":"payment_intent.succeeded"}`)
	_, err := VerifyAndParseEvent(tampered, header, testSecret, DefaultSignatureTolerance)

	assert.Error(t, err)
}

func TestVerifyAndParseEvent_StaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := SignPayload(payload, time.Now().Add(-time.Hour).Unix(), testSecret)

	_, err := VerifyAndParseEvent(payload, header, testSecret, DefaultSignatureTolerance)

	assert.Error(t, err)
}

func TestVerifyAndParseEvent_MissingHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)

	_, err := VerifyAndParseEvent(payload, "", testSecret, DefaultSignatureTolerance)
	assert.Error(t, err)

	_, err = VerifyAndParseEvent(payload, "v1=deadbeef", testSecret, DefaultSignatureTolerance)
	assert.Error(t, err)
}
