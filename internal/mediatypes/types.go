package mediatypes

import (
	"path/filepath"
	"strings"
)

// ImageExtensions maps file extensions to whether the resize engine can
// decode them.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// formatMimeTypes maps image.Decode / libvips format names to MIME types.
var formatMimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tiff": "image/tiff",
}

// RawPixelsMimeType is served for undecorated RGBA8 pixel buffers.
const RawPixelsMimeType = "application/octet-stream"

// IsImageFile reports whether name has a recognised image extension.
// Matching is case-insensitive.
func IsImageFile(name string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return RawPixelsMimeType
}

// MimeTypeForFormat returns the MIME type for a decoder format name such as
// "jpeg" or "png". Unknown formats map to application/octet-stream.
func MimeTypeForFormat(format string) string {
	if mime, ok := formatMimeTypes[strings.ToLower(format)]; ok {
		return mime
	}
	return RawPixelsMimeType
}
