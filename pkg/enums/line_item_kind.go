package enums

import "fmt"

// LineItemKind distinguishes plain product entries from customized compositions.
type LineItemKind string

const (
	LineItemKindDirect   LineItemKind = "direct"
	LineItemKindComposed LineItemKind = "composed"
)

var validLineItemKinds = []LineItemKind{
	LineItemKindDirect,
	LineItemKindComposed,
}

// String implements fmt.Stringer.
func (k LineItemKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known LineItemKind.
func (k LineItemKind) IsValid() bool {
	for _, candidate := range validLineItemKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLineItemKind converts raw input into a LineItemKind.
func ParseLineItemKind(value string) (LineItemKind, error) {
	for _, candidate := range validLineItemKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item kind %q", value)
}
