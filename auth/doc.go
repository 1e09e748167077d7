// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides DNI hashing, admin credentials and token utilities.

# DNI Handling

A DNI is exactly 8 ASCII digits:

	err := auth.ValidateDNI("12345678")

Voters send either the raw DNI or its SHA-256 hex digest (the browser hashes
it before sending). ResolveDNIHash accepts both and returns the digest:

	hash, err := auth.ResolveDNIHash(req.DNI, req.DNIHash)

Before storage the digest is keyed with the server salt:

	key := auth.SealDNIHash(hash, cfg.DNISalt)

Only the sealed value is ever written to the database.

# Admin Login

The admin password is never sent in clear; the client sends its SHA-256 hex
digest, compared in constant time against the configured one:

	ok := auth.CheckPassHash(req.PassHash, cfg.AdminPassHash)

# Admin Tokens

Tokens are stateless and HMAC-signed with an expiry:

	token := auth.GenerateAdminToken(user, secret, 12*time.Hour, time.Now())
	user, err := auth.ValidateAdminToken(token, secret, time.Now())

Validation fails with ErrInvalidToken or ErrExpiredToken.

# IP Hashing

For one-support-per-client on complaints and forum votes:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
