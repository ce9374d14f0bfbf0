// Package credential turns a submitted password into the form persisted
// with an account.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Scheme names accepted by New.
const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
)

// Plaintext stores passwords verbatim. It is the legacy behavior and keeps
// rows readable by existing tooling; prefer Bcrypt for new deployments.
type Plaintext struct{}

// Protect returns password unchanged.
func (Plaintext) Protect(password string) (string, error) {
	return password, nil
}

// Bcrypt stores bcrypt hashes.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a Bcrypt store. Costs outside bcrypt's accepted range
// fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Protect hashes password.
func (b *Bcrypt) Protect(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Store is the interface shared by the schemes.
type Store interface {
	Protect(password string) (string, error)
}

// New returns the store for scheme.
func New(scheme string, bcryptCost int) (Store, error) {
	switch scheme {
	case SchemePlaintext, "":
		return Plaintext{}, nil
	case SchemeBcrypt:
		return NewBcrypt(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}
