// Package types defines the settings tree, delivery record, store
// interfaces, and standard errors for the Waybill delivery-tracking system.
// See docs/ARCHITECTURE.md § Main Interfaces.
package types
