package helpers

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// PasswordAlphabet is the character set generated credentials are drawn from.
const PasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*?"

// GeneratedPasswordLength is the length of every generated credential.
const GeneratedPasswordLength = 8

// GeneratePassword returns a random credential of GeneratedPasswordLength characters,
// each picked uniformly (with replacement) from PasswordAlphabet.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(PasswordAlphabet)))
	b := make([]byte, GeneratedPasswordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = PasswordAlphabet[n.Int64()]
	}
	return string(b), nil
}

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
