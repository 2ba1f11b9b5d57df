package masterkey

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingseed/pkg/crypto"
)

// KeyInfo describes an encoded master key without exposing the secret.
type KeyInfo struct {
	Version     byte
	Compressed  bool
	PublicKey   []byte // compressed secp256k1 point
	Fingerprint [crypto.FingerprintSize]byte
}

// InspectMasterKey decodes an encoded key and reports its public parts.
func InspectMasterKey(encoded string) (*KeyInfo, error) {
	key, err := DecodeWIF(encoded)
	if err != nil {
		return nil, err
	}
	defer clear(key[:])

	pub, err := crypto.PublicKeyFromSecret(key[:])
	if err != nil {
		if errors.Is(err, crypto.ErrSecretOutOfRange) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return &KeyInfo{
		Version:     VersionByte,
		Compressed:  true,
		PublicKey:   pub,
		Fingerprint: crypto.Fingerprint(pub),
	}, nil
}
