package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxInputSize bounds documents accepted from files and HTTP bodies.
const maxInputSize = 16 << 20

// ValidateInputFilename validates the name of a document file.
// Only .json and .json5 files are accepted, matching the formats the parser
// understands.
func ValidateInputFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid characters")
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".json5":
		return nil
	default:
		return New(ErrCodeInvalidPath, "unsupported file type %q (must be .json or .json5)", filepath.Ext(name))
	}
}

// ValidateInputSize rejects documents larger than the accepted maximum.
func ValidateInputSize(n int) error {
	if n > maxInputSize {
		return New(ErrCodeInvalidInput, "document too large (%d bytes, max %d)", n, maxInputSize)
	}
	return nil
}

// hexColorRegex matches #rgb, #rgba, #rrggbb and #rrggbbaa colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// namedColorRegex matches CSS named colors such as "red" or "lightgrey".
var namedColorRegex = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)

// ValidateColor validates a stroke or fill color taken from a document.
// Accepts hex colors and CSS color names; anything else could break out of
// an SVG attribute or a DOT string.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidStyle, "color cannot be empty")
	}
	if hexColorRegex.MatchString(color) || namedColorRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidStyle, "invalid color: %q", color)
}

// ValidateOutputPath validates a path an artifact will be written to.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file, not a directory")
	}

	return nil
}
