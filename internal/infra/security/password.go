package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects inputs above 72 bytes, fail early with a clear error.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("security: password exceeds 72 bytes")

// BcryptHasher hashes admin passwords. Zero value uses bcrypt's default cost;
// tests set a lower cost to keep them fast.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (h BcryptHasher) cost() int {
	if h.Cost >= bcrypt.MinCost && h.Cost <= bcrypt.MaxCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}
