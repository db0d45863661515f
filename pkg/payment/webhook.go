package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event kinds the reconciler dispatches on.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventChargeRefunded    = "charge.refunded"
)

// DefaultSignatureTolerance bounds how stale a signed payload may be.
const DefaultSignatureTolerance = 5 * time.Minute

// Event is a verified processor webhook event envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutObject is the data.object of a checkout.session event.
type CheckoutObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// IntentObject is the data.object of a payment_intent event.
type IntentObject struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	LatestCharge string            `json:"latest_charge"`
	Metadata     map[string]string `json:"metadata"`
}

// ChargeObject is the data.object of a charge event.
type ChargeObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Refunded      bool   `json:"refunded"`
	Refunds       struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"refunds"`
}

// VerifyAndParseEvent checks the signature header against the shared
// secret and returns the decoded event. The header carries a timestamp
// and one or more v1 signatures: "t=<unix>,v1=<hex>". The signed payload
// is "<timestamp>.<raw body>".
func VerifyAndParseEvent(payload []byte, sigHeader, secret string, tolerance time.Duration) (*Event, error) {
	if sigHeader == "" {
		return nil, fmt.Errorf("missing signature header")
	}

	var timestamp int64
	var signatures []string
	for _, pair := range strings.Split(sigHeader, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return nil, fmt.Errorf("malformed signature header")
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return nil, fmt.Errorf("signature timestamp outside tolerance")
		}
	}

	expected := computeSignature(payload, timestamp, secret)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("signature verification failed")
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	return &event, nil
}

// SignPayload produces a valid signature header for a payload, used by
// tests to exercise the verification path.
func SignPayload(payload []byte, timestamp int64, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, computeSignature(payload, timestamp, secret))
}

func computeSignature(payload []byte, timestamp int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
