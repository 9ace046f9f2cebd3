package constants

import "strings"

// Document formats recognized by the extraction pipeline.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// Media types accepted at the upload boundary. Anything else is rejected
// before normalization begins.
const (
	MIMEPDF  = "application/pdf"
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// AllowedMIMETypes maps an accepted media type to its pipeline format.
var AllowedMIMETypes = map[string]string{
	MIMEPDF:  PDF,
	MIMEPNG:  IMAGE,
	MIMEJPEG: IMAGE,
}

// AllowedExtensions holds the file extensions accepted by the CLI.
var AllowedExtensions = map[string]string{
	"pdf":  MIMEPDF,
	"png":  MIMEPNG,
	"jpg":  MIMEJPEG,
	"jpeg": MIMEJPEG,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapMIMEToFormat returns the pipeline format for a declared media type,
// or "" when the type is unsupported.
func MapMIMEToFormat(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	// image/jpg shows up in the wild even though it was never registered
	if mt == "image/jpg" {
		mt = MIMEJPEG
	}
	return AllowedMIMETypes[mt]
}

// IsJPEGFamily reports whether the media type should be re-encoded as JPEG
// rather than PNG during normalization.
func IsJPEGFamily(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	return mt == MIMEJPEG || mt == "image/jpg"
}
