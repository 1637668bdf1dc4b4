// Package cryptox holds the password hashing and symmetric encryption
// primitives used for credentials and exported snapshots.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of salts produced by NewSalt.
const SaltSize = 32

// ErrDecrypt is returned when a ciphertext cannot be opened with the key.
var ErrDecrypt = errors.New("decryption failed")

// DeriveKey stretches a password with argon2id into a 32-byte key.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key; the verifier is what gets stored, the
// key itself never is.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashSecret returns the verifier for password under salt.
func HashSecret(password []byte, salt []byte) []byte {
	return MakeVerifier(DeriveKey(password, salt))
}

// VerifySecret reports whether password hashes to verifier under salt.
// The comparison is constant-time.
func VerifySecret(password []byte, salt []byte, verifier []byte) bool {
	candidate := HashSecret(password, salt)
	return subtle.ConstantTimeCompare(candidate, verifier) == 1
}

// Encrypt seals plaintext with AES-GCM under key (16, 24 or 32 bytes) and a
// fresh random nonce.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt opens a ciphertext produced by Encrypt. A wrong key, nonce or a
// tampered ciphertext yields ErrDecrypt.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
