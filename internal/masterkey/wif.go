package masterkey

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/Klingon-tech/klingseed/pkg/crypto"
)

// Encoded key layout: version(1) | key(32) | flag(1) | checksum(4).
const (
	VersionByte    = 0x80
	CompressedFlag = 0x01

	payloadLen = 1 + KeySize + 1
	encodedLen = payloadLen + crypto.ChecksumSize
)

// EncodeWIF encodes a 32-byte key in base58 with version byte, compressed
// flag and a 4-byte double SHA-256 checksum.
func EncodeWIF(key [KeySize]byte) (string, error) {
	buf := make([]byte, 0, encodedLen)
	buf = append(buf, VersionByte)
	buf = append(buf, key[:]...)
	buf = append(buf, CompressedFlag)
	sum := crypto.Checksum(buf)
	buf = append(buf, sum[:]...)

	if len(buf) != encodedLen {
		return "", fmt.Errorf("%w: assembled %d bytes", ErrEncoding, len(buf))
	}
	s := base58.Encode(buf)
	clear(buf)
	return s, nil
}

// DecodeWIF reverses EncodeWIF, verifying length, version, flag and checksum.
func DecodeWIF(encoded string) ([KeySize]byte, error) {
	var key [KeySize]byte
	raw, err := base58.Decode(encoded)
	if err != nil {
		return key, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer clear(raw)

	if len(raw) != encodedLen {
		return key, fmt.Errorf("%w: decoded %d bytes, want %d", ErrInvalidKey, len(raw), encodedLen)
	}
	if raw[0] != VersionByte {
		return key, fmt.Errorf("%w: version byte 0x%02x", ErrInvalidKey, raw[0])
	}
	if raw[payloadLen-1] != CompressedFlag {
		return key, fmt.Errorf("%w: flag byte 0x%02x", ErrInvalidKey, raw[payloadLen-1])
	}
	sum := crypto.Checksum(raw[:payloadLen])
	if !bytes.Equal(sum[:], raw[payloadLen:]) {
		return key, fmt.Errorf("%w: checksum mismatch", ErrInvalidKey)
	}
	copy(key[:], raw[1:1+KeySize])
	return key, nil
}
