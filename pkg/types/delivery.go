package types

import "time"

// Delivery is one row in the deliveries table: a trackable shipment tied
// to an order. ID is assigned by the store on insert and is immutable.
type Delivery struct {
	ID               int64     `json:"id"`
	OrderID          int64     `json:"order_id"`
	TrackingNumber   string    `json:"tracking_number"`
	Status           string    `json:"status"`
	ShippingProvider string    `json:"shipping_provider"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Delivery lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Statuses returns the valid delivery statuses in lifecycle order.
func Statuses() []string {
	return []string{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}
}

// ValidStatus reports whether s is one of the delivery statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DeliveryFilter narrows and pages a List call. Zero values mean "no
// constraint". OrderBy outside the allow-list falls back to id; Order
// outside ASC/DESC falls back to DESC; Limit is capped at MaxListLimit
// and Offset is floored at zero by the store.
type DeliveryFilter struct {
	Status           string
	ShippingProvider string
	From             time.Time
	To               time.Time
	OrderBy          string
	Order            string
	Limit            int
	Offset           int
}

// MaxListLimit is the hard cap on the number of records a single List
// call returns, regardless of the requested limit.
const MaxListLimit = 100

// DeliveryUpdate is a partial update; nil fields are left untouched.
// UpdatedAt is always refreshed by the store.
type DeliveryUpdate struct {
	Status           *string
	ShippingProvider *string
	TrackingNumber   *string
}

// DeliveryStore provides capability-gated access to the deliveries table.
// Every operation verifies the actor against the capability checker
// before touching storage.
type DeliveryStore interface {
	// Get retrieves a delivery by ID. Returns ErrInvalidID for id <= 0
	// without querying storage, ErrNotFound when no row exists.
	Get(actor string, id int64) (*Delivery, error)

	// List returns the page of deliveries matching the filter.
	List(actor string, filter DeliveryFilter) ([]*Delivery, error)

	// Count returns the number of deliveries, optionally restricted to
	// one status. Pass "" for all statuses.
	Count(actor string, status string) (int64, error)

	// Insert stores a new delivery and returns its assigned ID.
	// CreatedAt and UpdatedAt are set server-side; caller-supplied
	// values for those fields are ignored.
	Insert(actor string, d *Delivery) (int64, error)

	// Update applies a partial update and refreshes UpdatedAt.
	Update(actor string, id int64, patch DeliveryUpdate) error

	// Delete removes a delivery. id <= 0 is a no-op returning false;
	// the bool reports whether a row was actually removed.
	Delete(actor string, id int64) (bool, error)
}
