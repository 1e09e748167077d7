// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestorage

import (
	"context"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

// MaxImageBytes is the largest decoded image accepted
const MaxImageBytes = 5 << 20

var (
	ErrNotDataURL       = errors.New("not a data URL")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
	ErrInvalidName      = errors.New("invalid object name")
)

// ImageTypes maps accepted MIME types to file extensions
var ImageTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// FileStorage stores uploaded images and returns their public URL
type FileStorage interface {
	Upload(ctx context.Context, b []byte, name, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// IsDataURL reports whether s uses the data: scheme
func IsDataURL(s string) bool {
	return len(s) > 5 && strings.EqualFold(s[:5], "data:")
}

// DecodeDataURL decodes a data:<mime>;base64,<payload> image.
// Only image types in ImageTypes up to MaxImageBytes are accepted.
func DecodeDataURL(s string) ([]byte, string, error) {
	if !IsDataURL(s) {
		return nil, "", ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(s[5:], ",")
	if !ok {
		return nil, "", ErrNotDataURL
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if _, ok := ImageTypes[mime]; !ok {
		return nil, "", ErrUnsupportedImage
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		// Reject before decoding; 4 base64 chars carry 3 bytes
		if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
			return nil, "", ErrImageTooLarge
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", ErrNotDataURL
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", ErrNotDataURL
		}
		data = []byte(unescaped)
	}

	if len(data) > MaxImageBytes {
		return nil, "", ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, "", ErrNotDataURL
	}
	return data, mime, nil
}

// validName rejects names that could escape the storage root
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
