package enums

import "fmt"

// Severity controls how a notification is rendered in the tray.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var validSeveritys = []Severity{
	SeverityInfo,
	SeveritySuccess,
	SeverityWarning,
	SeverityError,
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Severity.
func (s Severity) IsValid() bool {
	for _, candidate := range validSeveritys {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSeverity converts raw input into a Severity.
func ParseSeverity(value string) (Severity, error) {
	for _, candidate := range validSeveritys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid severity %q", value)
}
