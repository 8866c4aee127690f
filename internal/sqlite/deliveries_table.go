// Deliveries table accessor: capability-gated CRUD and filtered,
// paginated listing over the deliveries table. Every value reaching SQL
// is parameterized; the ORDER BY column comes from a fixed allow-list.
// See docs/ARCHITECTURE.md § Record Repository.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/waybill/internal/sanitize"
	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Compile-time interface check: Deliveries must implement DeliveryStore.
var _ types.DeliveryStore = (*Deliveries)(nil)

// Deliveries implements the DeliveryStore interface.
type Deliveries struct {
	backend *Backend
	checker types.CapabilityChecker
}

// orderColumns is the ORDER BY allow-list. Anything else silently falls
// back to id.
var orderColumns = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
}

const deliveryColumns = "id, order_id, tracking_number, status, shipping_provider, created_at, updated_at"

// Get retrieves a delivery by ID. id <= 0 is rejected without querying
// storage.
func (t *Deliveries) Get(actor string, id int64) (*types.Delivery, error) {
	if !t.checker.Can(actor, types.CapViewDeliveries) {
		return nil, types.ErrPermissionDenied
	}
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	row := t.backend.db.QueryRow(
		"SELECT "+deliveryColumns+" FROM deliveries WHERE id = ?", id,
	)
	d, err := hydrateDelivery(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, &types.StorageError{Op: fmt.Sprintf("get delivery %d", id), Err: err}
	}
	return d, nil
}

// List returns the page of deliveries matching the filter. The limit is
// hard-capped at MaxListLimit and negative offsets are floored at zero.
func (t *Deliveries) List(actor string, filter types.DeliveryFilter) ([]*types.Delivery, error) {
	if !t.checker.Can(actor, types.CapViewDeliveries) {
		return nil, types.ErrPermissionDenied
	}

	query := "SELECT " + deliveryColumns + " FROM deliveries"
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.ShippingProvider != "" {
		conditions = append(conditions, "shipping_provider = ?")
		args = append(args, filter.ShippingProvider)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, formatTime(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, formatTime(filter.To))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	column, ok := orderColumns[filter.OrderBy]
	if !ok {
		column = "id"
	}
	direction := "DESC"
	if strings.EqualFold(filter.Order, "ASC") {
		direction = "ASC"
	}
	query += " ORDER BY " + column + " " + direction

	limit := filter.Limit
	if limit <= 0 || limit > types.MaxListLimit {
		limit = types.MaxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := t.backend.db.Query(query, args...)
	if err != nil {
		return nil, &types.StorageError{Op: "list deliveries", Err: err}
	}
	defer rows.Close()

	results := []*types.Delivery{}
	for rows.Next() {
		d, err := hydrateDelivery(rows.Scan)
		if err != nil {
			return nil, &types.StorageError{Op: "scan delivery", Err: err}
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StorageError{Op: "iterate deliveries", Err: err}
	}
	return results, nil
}

// Count returns the number of deliveries, optionally restricted to one
// status.
func (t *Deliveries) Count(actor string, status string) (int64, error) {
	if !t.checker.Can(actor, types.CapViewDeliveries) {
		return 0, types.ErrPermissionDenied
	}

	query := "SELECT COUNT(*) FROM deliveries"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	var count int64
	if err := t.backend.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, &types.StorageError{Op: "count deliveries", Err: err}
	}
	return count, nil
}

// Insert stores a new delivery and returns its assigned ID. CreatedAt
// and UpdatedAt are set server-side; a missing status defaults to
// pending. Validation runs before any storage access.
func (t *Deliveries) Insert(actor string, d *types.Delivery) (int64, error) {
	if !t.checker.Can(actor, types.CapManageDeliveries) {
		return 0, types.ErrPermissionDenied
	}

	if d.OrderID <= 0 {
		return 0, types.NewValidationError("order_id", "must be a positive integer")
	}
	tracking := sanitize.Sanitize(d.TrackingNumber, "tracking_number").(string)
	if tracking == "" {
		return 0, types.NewValidationError("tracking_number", "is required")
	}
	status := d.Status
	if status == "" {
		status = types.StatusPending
	} else {
		status = sanitize.Sanitize(status, "status").(string)
		if !types.ValidStatus(status) {
			return 0, types.NewValidationError("status",
				"must be one of "+strings.Join(types.Statuses(), ", "))
		}
	}
	provider := sanitize.Sanitize(d.ShippingProvider, "shipping_provider").(string)

	now := time.Now().UTC()
	res, err := t.backend.db.Exec(
		`INSERT INTO deliveries (order_id, tracking_number, status, shipping_provider, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		d.OrderID, tracking, status, provider, formatTime(now), formatTime(now),
	)
	if err != nil {
		return 0, &types.StorageError{Op: "insert delivery", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.StorageError{Op: "insert delivery id", Err: err}
	}

	d.ID = id
	d.TrackingNumber = tracking
	d.Status = status
	d.ShippingProvider = provider
	d.CreatedAt = now
	d.UpdatedAt = now
	return id, nil
}

// Update applies a partial update and refreshes updated_at. Nil patch
// fields are left untouched.
func (t *Deliveries) Update(actor string, id int64, patch types.DeliveryUpdate) error {
	if !t.checker.Can(actor, types.CapManageDeliveries) {
		return types.ErrPermissionDenied
	}
	if id <= 0 {
		return types.ErrInvalidID
	}

	var sets []string
	var args []any

	if patch.Status != nil {
		status := sanitize.Sanitize(*patch.Status, "status").(string)
		if !types.ValidStatus(status) {
			return types.NewValidationError("status",
				"must be one of "+strings.Join(types.Statuses(), ", "))
		}
		sets = append(sets, "status = ?")
		args = append(args, status)
	}
	if patch.ShippingProvider != nil {
		sets = append(sets, "shipping_provider = ?")
		args = append(args, sanitize.Sanitize(*patch.ShippingProvider, "shipping_provider").(string))
	}
	if patch.TrackingNumber != nil {
		tracking := sanitize.Sanitize(*patch.TrackingNumber, "tracking_number").(string)
		if tracking == "" {
			return types.NewValidationError("tracking_number", "is required")
		}
		sets = append(sets, "tracking_number = ?")
		args = append(args, tracking)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now().UTC()))
	args = append(args, id)

	res, err := t.backend.db.Exec(
		"UPDATE deliveries SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...,
	)
	if err != nil {
		return &types.StorageError{Op: fmt.Sprintf("update delivery %d", id), Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &types.StorageError{Op: "update delivery rows", Err: err}
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Delete removes a delivery. id <= 0 is a no-op returning false, not an
// error; the bool reports whether a row was removed.
func (t *Deliveries) Delete(actor string, id int64) (bool, error) {
	if !t.checker.Can(actor, types.CapManageDeliveries) {
		return false, types.ErrPermissionDenied
	}
	if id <= 0 {
		return false, nil
	}

	res, err := t.backend.db.Exec("DELETE FROM deliveries WHERE id = ?", id)
	if err != nil {
		return false, &types.StorageError{Op: fmt.Sprintf("delete delivery %d", id), Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, &types.StorageError{Op: "delete delivery rows", Err: err}
	}
	return affected > 0, nil
}

// formatTime renders a timestamp in the stored RFC3339 form.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// hydrateDelivery converts one SQLite row into a *types.Delivery.
func hydrateDelivery(scan func(...any) error) (*types.Delivery, error) {
	var d types.Delivery
	var provider sql.NullString
	var createdAt, updatedAt string
	if err := scan(&d.ID, &d.OrderID, &d.TrackingNumber, &d.Status, &provider, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.ShippingProvider = provider.String

	var err error
	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}
