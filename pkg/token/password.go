package token

import "golang.org/x/crypto/bcrypt"

// HashPassword produces the stored irreversible hash of a password.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(plain string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
