// internal/app/system/msgcrypt/msgcrypt.go

// Package msgcrypt encrypts message bodies at rest with AES-128-CBC.
// Ciphertexts are stored as "iv:ciphertext" with both halves hex encoded and
// a fresh random IV per message, so the same plaintext never produces the
// same stored value twice.
package msgcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// KeySize is the AES-128 key length in bytes.
const KeySize = 16

var (
	ErrBadKey        = errors.New("encryption key must be exactly 16 bytes")
	ErrBadCiphertext = errors.New("invalid encrypted message format")
)

// Cipher is an opaque encrypt/decrypt capability, injected where message
// bodies are written or read.
type Cipher struct {
	key []byte
}

// New returns a Cipher for the given 16-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrBadKey
	}
	c := &Cipher{key: make([]byte, KeySize)}
	copy(c.key, key)
	return c, nil
}

// Encrypt returns "iv:ciphertext" (hex:hex) for the given plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. It rejects malformed input (wrong shape, bad
// hex, truncated IV, non-block-aligned data, bad padding) rather than
// returning garbage.
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	ivHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", ErrBadCiphertext
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrBadCiphertext
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", ErrBadCiphertext
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", ErrBadCiphertext
	}
	return string(plain), nil
}

// PKCS#7 padding.

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("bad padded length %d", len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, fmt.Errorf("bad padding byte %d", n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("inconsistent padding")
		}
	}
	return b[:len(b)-n], nil
}
