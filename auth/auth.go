// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DNILength is the number of digits in a Peruvian DNI
const DNILength = 8

var (
	ErrInvalidDNI     = errors.New("invalid DNI")
	ErrInvalidDNIHash = errors.New("invalid DNI hash")
	ErrDNIMismatch    = errors.New("dni and dni_hash do not match")
	ErrInvalidToken   = errors.New("invalid token format")
	ErrExpiredToken   = errors.New("token expired")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateDNI checks that dni is exactly 8 ASCII digits
func ValidateDNI(dni string) error {
	if len(dni) != DNILength {
		return ErrInvalidDNI
	}
	for i := 0; i < len(dni); i++ {
		if dni[i] < '0' || dni[i] > '9' {
			return ErrInvalidDNI
		}
	}
	return nil
}

// HashDNI returns the lowercase SHA-256 hex digest of a DNI.
// The browser client computes the same digest before sending dni_hash.
func HashDNI(dni string) string {
	sum := sha256.Sum256([]byte(dni))
	return hex.EncodeToString(sum[:])
}

// ValidDNIHash reports whether h looks like a SHA-256 hex digest
func ValidDNIHash(h string) bool {
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

// ResolveDNIHash turns the voter-supplied identifier into a DNI hash.
// Either the raw DNI or its hash may be sent; if both are, they must agree.
// A hash sent in the dni field is accepted as the hash.
func ResolveDNIHash(dni, dniHash string) (string, error) {
	dniHash = strings.ToLower(strings.TrimSpace(dniHash))
	dni = strings.TrimSpace(dni)

	if dni != "" && ValidateDNI(dni) != nil && ValidDNIHash(dni) {
		h := strings.ToLower(dni)
		if dniHash != "" && dniHash != h {
			return "", ErrDNIMismatch
		}
		dni, dniHash = "", h
	}

	if dni != "" {
		if err := ValidateDNI(dni); err != nil {
			return "", err
		}
		computed := HashDNI(dni)
		if dniHash != "" && dniHash != computed {
			return "", ErrDNIMismatch
		}
		return computed, nil
	}

	if !ValidDNIHash(dniHash) {
		return "", ErrInvalidDNIHash
	}
	return dniHash, nil
}

// SealDNIHash keys a DNI hash with the server salt before storage.
// An unsalted SHA-256 of an 8-digit number is trivially reversible.
func SealDNIHash(dniHash, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dniHash))
	return hex.EncodeToString(h.Sum(nil))
}

// CheckPassHash compares a client-supplied SHA-256 password hash with the configured one
func CheckPassHash(got, want string) bool {
	got = strings.ToLower(strings.TrimSpace(got))
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return false
	}
	return hmac.Equal([]byte(got), []byte(want))
}

// GenerateAdminToken creates a stateless signed admin session token.
// Format: base64url(user|expiryUnix|nonce) "." base64url(hmac)
func GenerateAdminToken(user, secret string, ttl time.Duration, now time.Time) string {
	payload := strings.Join([]string{
		user,
		strconv.FormatInt(now.Add(ttl).Unix(), 10),
		uuid.NewString(),
	}, "|")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + sign(encoded, secret)
}

// ValidateAdminToken verifies the signature and expiry and returns the user
func ValidateAdminToken(token, secret string, now time.Time) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(sign(encoded, secret))) {
		return "", ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 || parts[0] == "" {
		return "", ErrInvalidToken
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !now.Before(time.Unix(expiry, 0)) {
		return "", ErrExpiredToken
	}
	return parts[0], nil
}

func sign(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
