// Package webhook posts status-change notifications to the configured
// endpoint. Failures are logged and never retried; they do not roll
// back the status change that triggered them.
// See docs/ARCHITECTURE.md § Services.
package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// statusPayload is the wire format of a status-change notification.
type statusPayload struct {
	DeliverURL int64  `json:"deliver_url"`
	Status     string `json:"status"`
}

// Sender delivers status-change webhooks. The endpoint is read from the
// settings tree on every send, so configuration changes take effect
// without restarting.
type Sender struct {
	client   *http.Client
	settings types.Settings
	log      *zap.Logger
}

// NewSender creates a webhook sender over the given settings façade.
func NewSender(settings types.Settings, log *zap.Logger) *Sender {
	return &Sender{
		client:   &http.Client{Timeout: 10 * time.Second},
		settings: settings,
		log:      log,
	}
}

// StatusChanged posts the status-change payload for a delivery. Send
// failures are logged server-side only.
func (s *Sender) StatusChanged(deliveryID int64, status string) {
	endpoint, _ := s.settings.Value("general", "webhook_url", "").(string)
	if endpoint == "" {
		s.log.Warn("webhook url not configured, skipping notification",
			zap.Int64("delivery_id", deliveryID))
		return
	}

	body, err := json.Marshal(statusPayload{DeliverURL: deliveryID, Status: status})
	if err != nil {
		s.log.Error("marshal webhook payload",
			zap.Int64("delivery_id", deliveryID), zap.Error(err))
		return
	}

	// Correlation id for log matching on both ends.
	eventID := uuid.NewString()

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		s.log.Error("build webhook request",
			zap.String("event_id", eventID), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("webhook delivery failed",
			zap.String("event_id", eventID),
			zap.Int64("delivery_id", deliveryID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Error("webhook rejected by endpoint",
			zap.String("event_id", eventID),
			zap.Int64("delivery_id", deliveryID),
			zap.Int("status_code", resp.StatusCode))
		return
	}

	s.log.Info("webhook delivered",
		zap.String("event_id", eventID),
		zap.Int64("delivery_id", deliveryID),
		zap.String("status", status))
}
