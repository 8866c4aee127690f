// Unit tests for value coercion and type dispatch.
package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

func TestSanitizeTypeDispatch(t *testing.T) {
	tests := []struct {
		name  string
		value any
		field string
		want  any
	}{
		{"nil passthrough", nil, "", nil},
		{"int coerces to int64", 42, "", int64(42)},
		{"float stays float", 3.25, "", 3.25},
		{"bool stays bool", true, "", true},
		{"email shape probed", "ops@example.com", "", "ops@example.com"},
		{"url shape probed", "https://example.com/track", "", "https://example.com/track"},
		{"invalid url coerces to empty", "https://", "", ""},
		{"plain text trimmed", "  hello world  ", "", "hello world"},
		{"tags stripped", "hello <b>world</b>", "", "hello world"},
		{"control characters stripped", "a\x01b\ncd", "", "a b cd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.value, tt.field))
		})
	}
}

func TestSanitizeExplicitRules(t *testing.T) {
	tests := []struct {
		name  string
		value any
		field string
		want  any
	}{
		{"enable_tracking yes", "yes", "enable_tracking", true},
		{"enable_tracking no", "no", "enable_tracking", false},
		{"enable_tracking numeric one", 1, "enable_tracking", true},
		{"enable_tracking string one", "1", "enable_tracking", true},
		{"enable_tracking bool", true, "enable_tracking", true},
		{"delivery_radius from string", "50km", "delivery_radius", int64(50)},
		{"delivery_radius negative flips", "-5", "delivery_radius", int64(5)},
		{"order_id from string", "42", "order_id", int64(42)},
		{"provider in allow-list", "dhl", "selected_shipping_provider", "dhl"},
		{"provider outside allow-list falls back", "carrier-pigeon", "selected_shipping_provider", "balto"},
		{"phone keeps dial characters", "+1 (555) 123-4567", "phone", "+1(555)123-4567"},
		{"email rule rejects junk", "not-an-email", "email", ""},
		{"url rule rejects junk", "ftp://example.com", "webhook_url", ""},
		{"url rule keeps https", "https://example.com/hook", "webhook_url", "https://example.com/hook"},
		{"date normalized", "03/15/2026", "date", "2026-03-15"},
		{"date invalid", "soon", "date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.value, tt.field))
		})
	}
}

// A key named status must be sanitized against the status rule no
// matter which section it appears under: rules are name-scoped, not
// path-scoped.
func TestSanitizeNameScopedRules(t *testing.T) {
	inGeneral := types.Tree{"general": {"status": "processing"}}
	inShipping := types.Tree{"shipping": {"nested": map[string]any{"status": "processing"}}}

	outGeneral := Sanitize(inGeneral, "").(types.Tree)
	outShipping := Sanitize(inShipping, "").(types.Tree)

	nested := outShipping["shipping"]["nested"].(map[string]any)
	assert.Equal(t, outGeneral["general"]["status"], nested["status"])
	assert.Equal(t, "processing", nested["status"])
}

func TestSanitizeRecursesCollections(t *testing.T) {
	in := map[string]any{
		"enabled": "yes",
		"tags":    []any{"  a ", "<i>b</i>"},
	}
	out := Sanitize(in, "").(map[string]any)

	assert.Equal(t, true, out["enabled"])
	require.Len(t, out["tags"], 2)
	assert.Equal(t, []any{"a", "b"}, out["tags"])
}

func TestBoolSpellings(t *testing.T) {
	truthy := []any{"yes", true, 1, "1", float64(1)}
	for _, v := range truthy {
		assert.True(t, Bool(v), "%v should be truthy", v)
	}
	falsy := []any{"no", false, 0, "0", "true-ish", nil, 2}
	for _, v := range falsy {
		assert.False(t, Bool(v), "%v should be falsy", v)
	}
}

func TestValidate(t *testing.T) {
	min := 10.0
	tests := []struct {
		name   string
		value  any
		rule   Rule
		field  string
		reason string // empty means valid
	}{
		{"required met", "x", Rule{Type: TypeString, Required: true}, "tracking_number", ""},
		{"required unmet", "", Rule{Type: TypeString, Required: true}, "tracking_number", "is required"},
		{"required unmet nil", nil, Rule{Type: TypeInt, Required: true}, "order_id", "is required"},
		{"max length ok", "abc", Rule{Type: TypeString, MaxLength: 3}, "api_key", ""},
		{"max length exceeded", "abcd", Rule{Type: TypeString, MaxLength: 3}, "api_key", "must be at most 3 characters"},
		{"allowed values ok", "pending", Rule{Type: TypeString, AllowedValues: types.Statuses()}, "status", ""},
		{"allowed values miss", "shipped", Rule{Type: TypeString, AllowedValues: types.Statuses()}, "status",
			"must be one of pending, processing, completed, cancelled"},
		{"min ok", 12, Rule{Type: TypeInt, Min: &min}, "delivery_radius", ""},
		{"min violated", 3, Rule{Type: TypeInt, Min: &min}, "delivery_radius", "must be at least 10"},
		{"optional empty skips checks", "", Rule{Type: TypeString, MaxLength: 1}, "api_key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value, tt.rule, tt.field)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestRuleFor(t *testing.T) {
	rule, ok := RuleFor("selected_shipping_provider")
	require.True(t, ok)
	assert.Equal(t, DefaultProvider, rule.Fallback)
	assert.Contains(t, rule.AllowedValues, "usps")

	_, ok = RuleFor("no_such_field")
	assert.False(t, ok)
}
