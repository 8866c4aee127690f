// Schema DDL for the SQLite backend.
// See docs/ARCHITECTURE.md § SQLite Backend.
package sqlite

// Deliveries: one row per trackable shipment tied to an order.
// Timestamps are RFC3339 text. The schema is additive-only; attach
// re-runs the statements idempotently.
const createDeliveries = `CREATE TABLE IF NOT EXISTS deliveries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id INTEGER NOT NULL,
    tracking_number TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    shipping_provider TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

const indexDeliveriesOrder = `CREATE INDEX IF NOT EXISTS idx_deliveries_order_id
    ON deliveries(order_id);`

const indexDeliveriesTracking = `CREATE INDEX IF NOT EXISTS idx_deliveries_tracking
    ON deliveries(tracking_number);`

// Options: single named persisted values, one of which holds the
// settings blob.
const createOptions = `CREATE TABLE IF NOT EXISTS options (
    name TEXT PRIMARY KEY,
    value BLOB NOT NULL
);`

// schemaStatements are executed in order on Attach.
var schemaStatements = []string{
	createDeliveries,
	indexDeliveriesOrder,
	indexDeliveriesTracking,
	createOptions,
}
