// Package sanitize provides pure coercion and validation for settings
// and delivery field values. Sanitize classifies a value by its field
// name or inferred type and coerces it; Validate checks a value against
// an explicit Rule and reports violations as ValidationError.
// See docs/ARCHITECTURE.md § Validation Engine.
package sanitize

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Sanitize coerces a value using the rule for fieldName when one exists,
// otherwise by type inference. Maps and slices are sanitized
// recursively, with each map key used as the field-name hint at that
// level.
func Sanitize(value any, fieldName string) any {
	switch v := value.(type) {
	case types.Tree:
		out := make(types.Tree, len(v))
		for name, section := range v {
			out[name] = Sanitize(section, name).(types.Section)
		}
		return out
	case types.Section:
		out := make(types.Section, len(v))
		for k, inner := range v {
			out[k] = Sanitize(inner, k)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[k] = Sanitize(inner, k)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = Sanitize(inner, "")
		}
		return out
	}

	if rule, ok := RuleFor(fieldName); ok {
		return applyRule(value, rule)
	}
	return byType(value)
}

// Validate checks a value against an explicit rule. A violation yields a
// *types.ValidationError carrying the field name and a human-readable
// reason; the caller decides whether to reject the operation or to
// substitute a default.
func Validate(value any, rule Rule, field string) error {
	if isEmpty(value) {
		if rule.Required {
			return types.NewValidationError(field, "is required")
		}
		return nil
	}

	if s, ok := asString(value); ok {
		if rule.MaxLength > 0 && len(s) > rule.MaxLength {
			return types.NewValidationError(field,
				fmt.Sprintf("must be at most %d characters", rule.MaxLength))
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
			return types.NewValidationError(field, "has an invalid format")
		}
		if len(rule.AllowedValues) > 0 && !contains(rule.AllowedValues, s) {
			return types.NewValidationError(field,
				"must be one of "+strings.Join(rule.AllowedValues, ", "))
		}
	}

	if rule.Min != nil {
		if n, ok := asFloat(value); ok && n < *rule.Min {
			return types.NewValidationError(field,
				fmt.Sprintf("must be at least %v", *rule.Min))
		}
	}

	return nil
}

// applyRule coerces a scalar according to its explicit rule.
func applyRule(value any, rule Rule) any {
	var out any
	switch rule.Type {
	case TypeInt:
		out = Integer(value)
	case TypeFloat:
		out = Float(value)
	case TypeBool:
		out = Bool(value)
	case TypeEmail:
		out = Email(Text(value))
	case TypePhone:
		out = Phone(Text(value))
	case TypeURL:
		out = URL(value)
	case TypeDate:
		out = Date(value)
	default:
		out = Text(value)
	}

	if len(rule.AllowedValues) > 0 && rule.Fallback != "" {
		if s, ok := asString(out); !ok || !contains(rule.AllowedValues, s) {
			return rule.Fallback
		}
	}
	return out
}

// byType coerces a value with no explicit rule. Dispatch order: null
// passthrough, integer, float, boolean, string. Strings are probed for
// email shape, then URL shape, and default to plain text.
func byType(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, _ := asFloat(v)
		return int64(n)
	case float32:
		return float64(v)
	case float64:
		return v
	case bool:
		return v
	case string:
		if emailPattern.MatchString(v) {
			return Email(v)
		}
		if looksLikeURL(v) {
			return URL(v)
		}
		return Text(v)
	default:
		return v
	}
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
	phoneStrip   = regexp.MustCompile(`[^0-9+()\-]`)
	intPattern   = regexp.MustCompile(`-?\d+`)
	floatPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)
)

// Text coerces a value to a plain-text scalar: tags and control
// characters stripped, whitespace runs collapsed, ends trimmed. Maps and
// slices coerce to the empty string.
func Text(value any) string {
	s, ok := asString(value)
	if !ok {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Integer coerces a value to a non-negative integer, extracting the
// first numeric run from strings.
func Integer(value any) int64 {
	switch v := value.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		m := intPattern.FindString(v)
		if m == "" {
			return 0
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0
		}
		return abs(n)
	default:
		if n, ok := asFloat(value); ok {
			return abs(int64(n))
		}
		return 0
	}
}

// Float coerces a value to a float, extracting the first numeric run
// from strings.
func Float(value any) float64 {
	if s, isStr := value.(string); isStr {
		m := floatPattern.FindString(s)
		if m == "" {
			return 0
		}
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return n
	}
	if n, ok := asFloat(value); ok {
		return n
	}
	return 0
}

// Bool normalizes boolean-ish values to the canonical bool
// representation. The accepted truthy spellings are "yes", true, 1 and
// "1"; everything else is false.
func Bool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "yes" || v == "1"
	default:
		if n, ok := asFloat(value); ok {
			return n == 1
		}
		return false
	}
}

// Email returns the trimmed address when it has a plausible email shape,
// otherwise the empty string.
func Email(s string) string {
	s = strings.TrimSpace(s)
	if emailPattern.MatchString(s) {
		return s
	}
	return ""
}

// Phone strips every character that is not a digit, +, parenthesis or
// hyphen.
func Phone(s string) string {
	return phoneStrip.ReplaceAllString(s, "")
}

// URL returns the trimmed value when it parses as an absolute http(s)
// URL, otherwise the empty string.
func URL(value any) string {
	s, ok := asString(value)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return s
}

// dateLayouts are tried in order when coercing date fields.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Date coerces a value to a YYYY-MM-DD date string, or the empty string
// when it cannot be parsed.
func Date(value any) string {
	s, ok := asString(value)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// looksLikeURL reports whether a string should take the URL probe path.
func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// asString converts scalars to their string form. Maps and slices
// report false.
func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case nil:
		return "", false
	default:
		switch value.(type) {
		case map[string]any, []any, types.Tree, types.Section:
			return "", false
		}
		return fmt.Sprintf("%v", value), true
	}
}

// asFloat converts numeric kinds to float64.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
