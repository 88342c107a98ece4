package institution

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacyDigest is the unsalted SHA-256 hex digest older accounts were stored with.
func legacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2")
}

// checkPassword reports whether password matches hash and whether hash is a
// legacy digest that should be upgraded.
func checkPassword(hash, password string) (ok, legacy bool) {
	if isBcryptHash(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
	}
	digest := legacyDigest(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(digest)) == 1, true
}
