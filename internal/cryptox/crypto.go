// Package cryptox implements at-rest protection for record findings:
// an argon2id key derived from an operator passphrase and AES-256-GCM
// sealing with a random nonce per value.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/failvault/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveKey (AES-256).
const KeySize = 32

var ErrEmptyPassphrase = errors.New("empty passphrase")

// DeriveKey stretches passphrase into a KeySize-byte key with argon2id.
// The same passphrase and salt always produce the same key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Sealer encrypts and decrypts short texts with a fixed key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from passphrase and salt and prepares AES-GCM.
func NewSealer(passphrase, salt string) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return NewSealerWithKey(DeriveKey([]byte(passphrase), []byte(salt)))
}

// NewSealerWithKey prepares AES-GCM over an explicit key (16, 24 or 32 bytes).
func NewSealerWithKey(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (ciphertext, nonce []byte) {
	nonce = common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nil, nonce, []byte(plaintext), nil), nonce
}

// Open reverses Seal. Tampered data or a wrong key yields an error.
func (s *Sealer) Open(ciphertext, nonce []byte) (string, error) {
	if len(nonce) != s.aead.NonceSize() {
		return "", errors.New("bad nonce size")
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
