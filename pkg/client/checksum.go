package client

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// Checksum derives the x-cursor-checksum header value from the session
// token. The value is two sha256-based device identifiers joined by a
// slash, prefixed with an obfuscated coarse timestamp:
//
//	base64url(obfuscate(timestamp)) + machineId + "/" + macMachineId
//
// The timestamp is the unix time in milliseconds divided by 1e6, packed
// big-endian into six bytes. Deriving both identifiers from the token
// keeps the checksum stable across calls for the same session.
func Checksum(token string) string {
	machineID := hashed64Hex(token, "machineId")
	macMachineID := hashed64Hex(token, "macMachineId")

	ts := time.Now().UnixMilli() / 1_000_000
	stamp := []byte{
		byte(ts >> 40),
		byte(ts >> 32),
		byte(ts >> 24),
		byte(ts >> 16),
		byte(ts >> 8),
		byte(ts),
	}
	obfuscate(stamp)

	return base64.RawURLEncoding.EncodeToString(stamp) + machineID + "/" + macMachineID
}

// hashed64Hex produces a 64-character hex identifier from a salted
// sha256 of the token.
func hashed64Hex(token, salt string) string {
	sum := sha256.Sum256([]byte(salt + token))
	return hex.EncodeToString(sum[:])
}

// obfuscate applies the backend's rolling byte transform in place: each
// byte is XORed with the running key and offset by its index, and the
// result becomes the next key.
func obfuscate(data []byte) {
	key := byte(165)
	for i := range data {
		data[i] = (data[i] ^ key) + byte(i%256)
		key = data[i]
	}
}
