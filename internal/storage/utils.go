package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// keyPrefix groups every archive image under one folder of the bucket
const keyPrefix = "archive/"

// imageExtensions maps accepted image content types to file extensions
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionForContentType infers the extension from the content type.
// Returns an empty string for content types that are not accepted images.
func ExtensionForContentType(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return imageExtensions[mediaType]
}

// ContentTypeForKey returns the image content type matching the extension of an object key,
// or an empty string for unknown extensions
func ContentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for contentType, e := range imageExtensions {
		if e == ext && contentType != "image/jpg" {
			return contentType
		}
	}
	return ""
}

// IsAllowedImageType reports whether contentType is an accepted image format
func IsAllowedImageType(contentType string) bool {
	return ExtensionForContentType(contentType) != ""
}

// GenerateObjectKey builds a unique object key from a display name and extension,
// e.g. "archive/juan-perez-<uuid>.jpg"
func GenerateObjectKey(name, extension string) string {
	if extension != "" && extension[0] != '.' {
		extension = "." + extension
	}

	base := slug.Make(name)
	if len(base) > 60 {
		base = strings.TrimRight(base[:60], "-")
	}
	if base == "" {
		base = "record"
	}

	return keyPrefix + base + "-" + uuid.New().String() + extension
}
