package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1
	keyLen  = 64
	saltLen = 16
)

// HashPassword derives a scrypt key from the password and encodes it as
// hex(key) + "." + hex(salt). The dot separator doubles as the marker that a
// value is already hashed, so seed data can carry pre-hashed passwords.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hash: read salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("hash: derive key: %w", err)
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// CheckPassword reports whether password matches the encoded hash.salt value.
func CheckPassword(encoded, password string) bool {
	keyHex, saltHex, ok := strings.Cut(encoded, ".")
	if !ok {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, got) == 1
}

// IsHashed reports whether the value already carries the hash.salt separator.
func IsHashed(password string) bool {
	return strings.Contains(password, ".")
}
