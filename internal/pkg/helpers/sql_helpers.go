package helpers

import "strings"

// TrimmedOrNil trims s and returns nil when nothing is left, for nullable
// text columns.
func TrimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TrimPtr trims the pointed-to string. A nil pointer stays nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// StringValue dereferences s, returning "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
