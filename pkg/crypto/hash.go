// Package crypto provides the hashing and key primitives used by klingseed.
package crypto

import (
	"github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
)

// HashSize is the size of every digest returned by this package.
const HashSize = 32

// ChecksumSize is the number of DoubleSHA256 bytes appended to encoded keys.
const ChecksumSize = 4

// FingerprintSize is the length of a public key fingerprint.
const FingerprintSize = 8

// Hash is a 32-byte digest.
type Hash [HashSize]byte

// Blake3 computes a BLAKE3-256 hash of the input data.
func Blake3(data []byte) Hash {
	return blake3.Sum256(data)
}

// DoubleSHA256 computes SHA256(SHA256(data)).
func DoubleSHA256(data []byte) Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Checksum returns the first ChecksumSize bytes of DoubleSHA256(data).
func Checksum(data []byte) [ChecksumSize]byte {
	h := DoubleSHA256(data)
	var sum [ChecksumSize]byte
	copy(sum[:], h[:ChecksumSize])
	return sum
}

// Fingerprint derives a short identifier from a compressed public key.
// Fingerprint = BLAKE3(compressed_pubkey)[:8].
func Fingerprint(pubKey []byte) [FingerprintSize]byte {
	h := Blake3(pubKey)
	var fp [FingerprintSize]byte
	copy(fp[:], h[:FingerprintSize])
	return fp
}
