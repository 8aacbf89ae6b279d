package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len(value) > max {
		v[field] = "too_long"
	}
}

func OneOfInt(field string, val int, allowed []int, v Violations) {
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	v[field] = "not_allowed"
}
