// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package filestorage stores images uploaded through the admin image library.

Two backends implement FileStorage:

	fs := filestorage.NewLocalStorage("uploads", "/uploads")
	fs, err := filestorage.NewGCSStorage(ctx, "my-bucket")

The admin client sends images as data URLs; DecodeDataURL validates the
MIME type against ImageTypes and the size against MaxImageBytes.
Object names must be a single path segment.
*/
package filestorage
