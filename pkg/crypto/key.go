package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SecretSize is the length of a secp256k1 secret scalar.
const SecretSize = 32

// ErrSecretOutOfRange is returned for a secret that is zero or not below the
// curve order.
var ErrSecretOutOfRange = errors.New("secret out of range")

// PublicKeyFromSecret returns the compressed 33-byte public key for a 32-byte
// secret scalar.
func PublicKeyFromSecret(secret []byte) ([]byte, error) {
	if len(secret) != SecretSize {
		return nil, fmt.Errorf("secret must be %d bytes, got %d", SecretSize, len(secret))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(secret); overflow || s.IsZero() {
		return nil, ErrSecretOutOfRange
	}
	key := secp256k1.NewPrivateKey(&s)
	defer key.Zero()
	return key.PubKey().SerializeCompressed(), nil
}

// ValidSecret reports whether secret is a usable secp256k1 scalar.
func ValidSecret(secret []byte) bool {
	_, err := PublicKeyFromSecret(secret)
	return err == nil
}
