// Order-creation hook: the host calls OrderCreated when an order is
// placed, and the service synchronously inserts the matching delivery
// record.
package service

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/waybill/internal/sanitize"
	"github.com/mesh-intelligence/waybill/pkg/types"
)

// trackingNumberLength is the length of generated tracking tokens.
const trackingNumberLength = 12

// Orders handles the inbound order hook.
type Orders struct {
	deliveries types.DeliveryStore
	settings   types.Settings
	log        *zap.Logger
}

// NewOrders creates the order-integration service.
func NewOrders(deliveries types.DeliveryStore, settings types.Settings, log *zap.Logger) *Orders {
	return &Orders{deliveries: deliveries, settings: settings, log: log}
}

// OrderCreated inserts a pending delivery for the order, with a freshly
// generated tracking token and the currently configured default
// shipping provider.
func (o *Orders) OrderCreated(actor string, orderID int64) (*types.Delivery, error) {
	provider := sanitize.DefaultProvider
	if v, ok := o.settings.Value("shipping", "selected_shipping_provider", provider).(string); ok && v != "" {
		provider = v
	}

	d := &types.Delivery{
		OrderID:          orderID,
		TrackingNumber:   NewTrackingNumber(),
		Status:           types.StatusPending,
		ShippingProvider: provider,
	}
	if _, err := o.deliveries.Insert(actor, d); err != nil {
		return nil, err
	}

	o.log.Info("delivery created for order",
		zap.Int64("order_id", orderID),
		zap.Int64("delivery_id", d.ID),
		zap.String("tracking_number", d.TrackingNumber),
		zap.String("shipping_provider", provider))
	return d, nil
}

// NewTrackingNumber returns a 12-character uppercase hex tracking
// token derived from a fresh UUID.
func NewTrackingNumber() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:])[:trackingNumberLength])
}
