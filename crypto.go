package aocdata

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the cache encryption key from the user's
// passphrase. The memory-hard derivation makes brute-forcing a weak
// passphrase expensive.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keyLen       = 32
	saltLen      = 16
)

// deriveKey derives a 256-bit AES key from a passphrase and salt. The
// derivation is deterministic: the same passphrase and salt always yield the
// same key.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLen)
}

// newSalt returns a fresh random salt for key derivation.
func newSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// seal encrypts plaintext with AES-256-GCM under a fresh random nonce. The
// nonce is prepended to the returned ciphertext.
func seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != keyLen {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ct := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ct...), nil
}

// open decrypts a blob produced by seal, verifying the integrity tag. A
// verification failure returns an error rather than wrong plaintext.
func open(key, blob []byte) ([]byte, error) {
	if len(key) != keyLen {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(blob) < ns {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, blob[:ns], blob[ns:], nil)
}
