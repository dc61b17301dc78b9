package enums

import "fmt"

// MediaType maps to the media_type_enum enum in Postgres.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
	MediaTypeFile  MediaType = "file"
	MediaTypeCode  MediaType = "code"
	MediaTypeText  MediaType = "text"
)

var validMediaTypes = []MediaType{
	MediaTypeVideo,
	MediaTypeImage,
	MediaTypeFile,
	MediaTypeCode,
	MediaTypeText,
}

// IsValid reports whether the value matches the canonical media type enum.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}
