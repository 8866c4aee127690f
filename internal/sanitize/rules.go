// Field validation rules for the sanitize package. Rules are keyed by
// field name alone, not by section + key: a field named status is
// validated identically everywhere it appears.
// See docs/ARCHITECTURE.md § Validation Engine.
package sanitize

import (
	"regexp"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Type declares how a field's value is coerced.
type Type string

// Field types.
const (
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeString Type = "string"
	TypeBool   Type = "bool"
	TypeEmail  Type = "email"
	TypePhone  Type = "phone"
	TypeURL    Type = "url"
	TypeDate   Type = "date"
)

// Rule is the constraint set applied to one field name.
type Rule struct {
	Type          Type
	Required      bool
	MaxLength     int
	Min           *float64
	Pattern       *regexp.Regexp
	AllowedValues []string

	// Fallback, when non-empty, is substituted on an AllowedValues miss
	// during sanitization. Validate still reports the miss for callers
	// that reject instead of substituting.
	Fallback string
}

// Shipping providers accepted for selected_shipping_provider.
var allowedProviders = []string{"balto", "dhl", "fedex", "ups", "usps"}

// DefaultProvider is substituted when a selected provider is not in the
// allowed set.
const DefaultProvider = "balto"

var zero = 0.0

// fieldRules maps field names to their explicit rules. Names absent here
// fall back to type inference.
var fieldRules = map[string]Rule{
	"shipping_provider": {Type: TypeString, MaxLength: 255},
	"tracking_number":   {Type: TypeString, Required: true, MaxLength: 100},
	"order_id":          {Type: TypeInt, Required: true, Min: &zero},
	"status":            {Type: TypeString, AllowedValues: types.Statuses()},
	"default_status":    {Type: TypeString, AllowedValues: types.Statuses(), Fallback: types.StatusPending},
	"selected_shipping_provider": {
		Type:          TypeString,
		AllowedValues: allowedProviders,
		Fallback:      DefaultProvider,
	},
	"enable_tracking": {Type: TypeBool},
	"enabled":         {Type: TypeBool},
	"delivery_radius": {Type: TypeInt, Min: &zero},
	"api_key":         {Type: TypeString, MaxLength: 255},
	"email":           {Type: TypeEmail},
	"phone":           {Type: TypePhone},
	"url":             {Type: TypeURL},
	"website_url":     {Type: TypeURL},
	"webhook_url":     {Type: TypeURL},
	"tracking_url":    {Type: TypeURL},
	"date":            {Type: TypeDate},
}

// RuleFor returns the explicit rule for a field name, if one exists.
func RuleFor(field string) (Rule, bool) {
	r, ok := fieldRules[field]
	return r, ok
}
