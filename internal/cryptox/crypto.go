// Package cryptox seals the SyncDocument before it travels through the
// third-party file host. Keys are derived from a user passphrase with
// argon2id; the document bytes are encrypted with AES-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/argon2"

	"github.com/tetete478/Snipee-sub000/internal/common"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

// SaltSize is the number of random bytes used as the argon2 salt.
const SaltSize = 16

// DeriveKey stretches a passphrase into an AES-256 key using argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// NewSalt returns a fresh random salt for DeriveKey.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Seal encrypts plaintext with AES-GCM under the given key. A new random
// 12-byte nonce is generated per call and returned alongside the ciphertext.
//
// The key must be 16, 24, or 32 bytes long.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Open decrypts ciphertext produced by Seal. It fails when the key or nonce
// is wrong or the ciphertext was tampered with.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
