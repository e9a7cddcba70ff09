package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// prehash keeps bcrypt input at 44 bytes; bcrypt rejects anything over 72.
func prehash(p string) []byte {
	sum := sha256.Sum256([]byte(p))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prehash(p), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyPassword returns nil when plain matches hash.
func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(plain))
}
