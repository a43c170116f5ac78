package auth

import (
	"errors"

	"github.com/agora-shop/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed verification. Callers must
// not distinguish unknown-user from wrong-password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks a username/password pair and reports the role the
// identity carries. Implementations never see or store plaintext passwords
// beyond the comparison itself.
type CredentialVerifier interface {
	Verify(username, password string) (role string, err error)
}

// SingleAdminVerifier is the built-in verifier for the one fixed administrator
// account. The password is held only as a bcrypt hash.
type SingleAdminVerifier struct {
	username     string
	passwordHash []byte
}

// NewSingleAdminVerifier creates a verifier from a precomputed bcrypt hash.
func NewSingleAdminVerifier(username, passwordHash string) *SingleAdminVerifier {
	return &SingleAdminVerifier{username: username, passwordHash: []byte(passwordHash)}
}

// NewSingleAdminVerifierFromPassword hashes a plaintext password at
// construction time. Intended for dev setups without ADMIN_PASSWORD_HASH.
func NewSingleAdminVerifierFromPassword(username, password string) (*SingleAdminVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &SingleAdminVerifier{username: username, passwordHash: hash}, nil
}

func (v *SingleAdminVerifier) Verify(username, password string) (string, error) {
	if username != v.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return enum.RoleAdmin, nil
}
