package models

// ContentKind names the two kinds of uploaded content
type ContentKind string

const (
	ContentMaterial  ContentKind = "material"
	ContentReference ContentKind = "reference"
)

// IsValid reports whether k is a known content kind
func (k ContentKind) IsValid() bool {
	return k == ContentMaterial || k == ContentReference
}
