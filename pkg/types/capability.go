package types

// Capabilities checked before storage access.
const (
	CapViewDeliveries   = "view_deliveries"
	CapManageDeliveries = "manage_deliveries"
	CapManageSettings   = "manage_settings"
)

// CapabilityChecker is the external access-control collaborator. The
// host resolves the actor token to a principal and answers whether it
// holds the capability.
type CapabilityChecker interface {
	Can(actor, capability string) bool
}

// AllowAll grants every capability. Used by the local admin CLI, where
// the operating-system user is the trust boundary.
type AllowAll struct{}

// Can always reports true.
func (AllowAll) Can(string, string) bool { return true }
