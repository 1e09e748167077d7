// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seed loads the embedded demo dataset (encuestas with seeded
// counts, noticias, denuncias and forum questions). Apply only inserts ids
// that are missing, so it is safe to run on every startup.
package seed
