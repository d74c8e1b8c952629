// AngelaMos | 2026
// security.go

package core

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultPasswordHashCost = 10

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordHashCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}

var dummyHash string

func init() {
	hash, err := HashPassword(
		"dummy_password_for_timing_attack_prevention",
		bcrypt.MinCost,
	)
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = hash
}

// VerifyPasswordTimingSafe always performs a bcrypt comparison, substituting a
// dummy hash when no stored hash exists, so the unknown-account path costs the
// same as the wrong-password path.
func VerifyPasswordTimingSafe(password string, hash *string) (bool, error) {
	hashToVerify := dummyHash
	if hash != nil && *hash != "" {
		hashToVerify = *hash
	}

	valid, err := VerifyPassword(password, hashToVerify)

	if hash == nil || *hash == "" {
		return false, nil
	}

	return valid, err
}
