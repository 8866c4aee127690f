// Package service wires the stores to the host's integration points:
// the order-creation hook and delivery status updates with outbound
// notification.
// See docs/ARCHITECTURE.md § Services.
package service

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Notifier is the outbound status-change collaborator.
type Notifier interface {
	StatusChanged(deliveryID int64, status string)
}

// Deliveries coordinates status updates: persist first, then notify.
// A failed notification never rolls back the persisted change.
type Deliveries struct {
	store    types.DeliveryStore
	notifier Notifier
	log      *zap.Logger
}

// NewDeliveries creates the delivery status-update service.
func NewDeliveries(store types.DeliveryStore, notifier Notifier, log *zap.Logger) *Deliveries {
	return &Deliveries{store: store, notifier: notifier, log: log}
}

// UpdateStatus moves a delivery to the given status and fires the
// status-change webhook.
func (s *Deliveries) UpdateStatus(actor string, id int64, status string) error {
	if err := s.store.Update(actor, id, types.DeliveryUpdate{Status: &status}); err != nil {
		return err
	}

	s.log.Info("delivery status updated",
		zap.Int64("delivery_id", id), zap.String("status", status))
	s.notifier.StatusChanged(id, status)
	return nil
}

// UpdateProvider changes a delivery's shipping provider.
func (s *Deliveries) UpdateProvider(actor string, id int64, provider string) error {
	if err := s.store.Update(actor, id, types.DeliveryUpdate{ShippingProvider: &provider}); err != nil {
		return err
	}
	s.log.Info("delivery provider updated",
		zap.Int64("delivery_id", id), zap.String("shipping_provider", provider))
	return nil
}
