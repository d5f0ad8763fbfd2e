package validation

import (
	"regexp"
	"strings"
)

var (
	// EmailPattern accepts anything shaped like local@domain.tld
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

	PasswordMinLength = 6

	NameMinLength = 1
	NameMaxLength = 100

	TitleMaxLength    = 255
	AuthorMaxLength   = 255
	FileNameMaxLength = 255
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// IsValidEmail reports whether email matches EmailPattern after trimming
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.TrimSpace(email))
}

// StringValidation is a small builder for one-off string checks
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Trim     bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a required string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Trimmed makes the checks run against the value without surrounding whitespace
func (v *StringValidation) Trimmed() *StringValidation {
	v.Trim = true
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	value := v.Value
	if v.Trim {
		value = strings.TrimSpace(value)
	}

	if value == "" {
		return !v.Required
	}

	n := len([]rune(value))
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(value) {
		return false
	}

	return true
}
