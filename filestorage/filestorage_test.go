// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestorage

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(png)

	tests := []struct {
		name     string
		input    string
		wantMime string
		wantData []byte
		wantErr  error
	}{
		{"base64 png", "data:image/png;base64," + encoded, "image/png", png, nil},
		{"uppercase scheme and mime", "DATA:IMAGE/PNG;base64," + encoded, "image/png", png, nil},
		{"svg percent encoded", "data:image/svg+xml,%3Csvg%2F%3E", "image/svg+xml", []byte("<svg/>"), nil},
		{"plain url", "https://example.com/a.png", "", nil, ErrNotDataURL},
		{"missing comma", "data:image/png;base64", "", nil, ErrNotDataURL},
		{"bad base64", "data:image/png;base64,@@@", "", nil, ErrNotDataURL},
		{"empty payload", "data:image/png;base64,", "", nil, ErrNotDataURL},
		{"not an image", "data:text/html;base64," + encoded, "", nil, ErrUnsupportedImage},
		{"no mime", "data:;base64," + encoded, "", nil, ErrUnsupportedImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, mime, err := DecodeDataURL(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, mime)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

func TestDecodeDataURL_Size(t *testing.T) {
	atLimit := base64.StdEncoding.EncodeToString(make([]byte, MaxImageBytes))
	data, _, err := DecodeDataURL("data:image/jpeg;base64," + atLimit)
	require.NoError(t, err)
	assert.Len(t, data, MaxImageBytes)

	over := base64.StdEncoding.EncodeToString(make([]byte, MaxImageBytes+1))
	_, _, err = DecodeDataURL("data:image/jpeg;base64," + over)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	// Oversized non-base64 payloads are caught after unescaping
	_, _, err = DecodeDataURL("data:image/svg+xml," + strings.Repeat("a", MaxImageBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestIsDataURL(t *testing.T) {
	assert.True(t, IsDataURL("data:image/png;base64,AAAA"))
	assert.False(t, IsDataURL("data:"))
	assert.False(t, IsDataURL("/uploads/a.png"))
}
