package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Configuration for scrypt key derivation. These are versioned by the "scrypt"
// tag in the encoded hash: the salt and derived key travel with the hash, so
// the parameters can change for new hashes without invalidating old ones.
const (
	scryptN    = 16384 // CPU/memory cost
	scryptR    = 8     // block size
	scryptP    = 1     // parallelism
	keyLength  = 64    // length of the derived key
	saltLength = 16    // length of the random salt
)

// HashPassword derives a key from the password with a fresh random salt and
// encodes it as "scrypt$<hex salt>$<hex key>". The only failure mode is the
// system RNG.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return fmt.Sprintf("scrypt$%s$%s", hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches the encoded hash. It
// recomputes the derivation with the embedded salt and compares in constant
// time. Malformed or unrecognized hashes return false, never an error.
func VerifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 3 || parts[0] != "scrypt" {
		return false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := hex.DecodeString(parts[2])
	if err != nil || len(expected) == 0 {
		return false
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(expected))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(key, expected) == 1
}
