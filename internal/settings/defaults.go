package settings

import "github.com/mesh-intelligence/waybill/pkg/types"

// SchemaVersion identifies the default-schema revision. New keys are
// added here; removed keys keep decoding as forward-compatible
// passthrough.
const SchemaVersion = "1.0.0"

// defaults is the static default schema. It doubles as the type oracle
// for validation: a key's scalar type is inferred from its default's
// kind unless the field has an explicit rule. Numeric defaults use
// float64 to match the canonical JSON codec's number decoding.
var defaults = types.Tree{
	"general": {
		"api_key":         "",
		"enable_tracking": true,
		"default_status":  types.StatusPending,
		"delivery_radius": float64(50),
		"delivery_unit":   "km",
		"website_url":     "https://shop.example.com/",
		"webhook_url":     "https://shop.example.com/webhook",
	},
	"shipping": {
		"selected_shipping_provider": "balto",
		"balto": map[string]any{
			"name":         "Balto",
			"tracking_url": "https://balto.com/track",
			"enabled":      true,
		},
		"fedex": map[string]any{
			"name":         "FedEx",
			"tracking_url": "https://www.fedex.com/en-us/tracking.html",
			"enabled":      true,
		},
		"ups": map[string]any{
			"name":         "UPS",
			"tracking_url": "https://www.ups.com/track",
			"enabled":      true,
		},
		"usps": map[string]any{
			"name":         "USPS",
			"tracking_url": "https://tools.usps.com/go/TrackConfirmAction_input",
			"enabled":      true,
		},
	},
}

// Defaults returns a deep copy of the default schema.
func Defaults() types.Tree {
	return defaults.Clone()
}
