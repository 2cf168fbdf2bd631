package fields

import (
	"fmt"
	"net/url"

	"recruitsync-engine/internal/domain"
)

// Extract returns the value of the first custom field whose name matches
// exactly (case-sensitive). List values collapse to their first element.
// Absent fields, empty lists and empty values all return "".
func Extract(fields []domain.CustomField, name string) string {
	for _, f := range fields {
		if f.Name != name {
			continue
		}
		return scalar(f.Value)
	}
	return ""
}

// ExtractList wraps Extract for destination fields that are list-typed:
// "" becomes an empty slice, anything else a single-element slice.
func ExtractList(fields []domain.CustomField, name string) []string {
	v := Extract(fields, name)
	if v == "" {
		return []string{}
	}
	return []string{v}
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		if len(val) == 0 {
			return ""
		}
		return scalar(val[0])
	case []string:
		if len(val) == 0 {
			return ""
		}
		return val[0]
	case float64:
		// JSON numbers decode as float64; ids and years are integral
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Form is a flat first-value-wins view of a URL-encoded blob.
type Form map[string]string

// ParseForm decodes a URL-encoded form blob (percent escapes and +
// for space) the way Brazen registration data arrives.
func ParseForm(blob string) (Form, error) {
	values, err := url.ParseQuery(blob)
	if err != nil {
		return nil, fmt.Errorf("parse form blob: %w", err)
	}
	f := make(Form, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			f[k] = vs[0]
		}
	}
	return f, nil
}

func (f Form) Get(key string) string { return f[key] }

func (f Form) GetDefault(key, def string) string {
	if v, ok := f[key]; ok && v != "" {
		return v
	}
	return def
}
