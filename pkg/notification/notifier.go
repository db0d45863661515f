package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notification kinds emitted at booking transition points.
const (
	KindBookingConfirmed = "booking_confirmed"
	KindBookingCancelled = "booking_cancelled"
	KindCompletionOTP    = "completion_otp"
	KindBookingCompleted = "booking_completed"
)

// Notification is the payload handed to the delivery collaborator.
// Delivery channel (push/email/SMS) is the collaborator's decision.
type Notification struct {
	Kind           string            `json:"kind"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientPhone string            `json:"recipient_phone,omitempty"`
	BookingID      string            `json:"booking_id"`
	Data           map[string]string `json:"data,omitempty"`
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// HTTPNotifier posts notifications to the external delivery service.
type HTTPNotifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

func NewHTTPNotifier(endpoint, apiKey string, log *zap.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log.With(zap.String("component", "notifier")),
	}
}

func (n *HTTPNotifier) Send(ctx context.Context, notif Notification) error {
	body, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}

	return nil
}

// Dispatch sends in the background. Delivery failures are logged and
// never affect the triggering transition.
func Dispatch(notifier Notifier, log *zap.Logger, notif Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := notifier.Send(ctx, notif); err != nil {
			log.Warn("Notification delivery failed",
				zap.Error(err),
				zap.String("kind", notif.Kind),
				zap.String("booking_id", notif.BookingID),
			)
		}
	}()
}
