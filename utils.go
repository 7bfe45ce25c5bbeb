package filevault

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 4096
	pbkdf2KeyLen     = 32
	saltLen          = 16
)

// ParseBasicCredentials extracts email and password from an Authorization
// header value of the form "Basic base64(email:password)". Any malformed
// value yields ErrBadRequest.
func ParseBasicCredentials(authorization string) (email, password string, err error) {
	scheme, encoded, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", fmt.Errorf("parse credentials: %w: expected Basic scheme", ErrBadRequest)
	}

	decoded, decodeErr := base64.StdEncoding.DecodeString(encoded)
	if decodeErr != nil {
		return "", "", fmt.Errorf("parse credentials: %w: %v", ErrBadRequest, decodeErr)
	}

	email, password, found = strings.Cut(string(decoded), ":")
	if !found || email == "" {
		return "", "", fmt.Errorf("parse credentials: %w: missing separator", ErrBadRequest)
	}

	return email, password, nil
}

// HashPassword derives a salted PBKDF2-SHA256 digest and encodes it as
// hex(salt)$hex(key).
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// VerifyPassword recomputes the digest for password using the salt embedded
// in encoded and compares in constant time. A malformed encoded value is a
// mismatch, not an error.
func VerifyPassword(password, encoded string) bool {
	saltHex, keyHex, found := strings.Cut(encoded, "$")
	if !found {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}

	candidate := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(candidate, key) == 1
}
