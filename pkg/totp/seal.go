package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	AESKeySize = 32 // Required key size for AES-256 (256 bits / 8 = 32 bytes)

	sealInfo = "trustkit-totp-secret-v1"
)

// SealSecret encrypts secret for storage with AES-256-GCM under a key derived
// from masterKey via HKDF-SHA256. account is bound as associated data, so a
// sealed secret copied onto another account fails to open.
// Returns base64(nonce || ciphertext || tag).
func SealSecret(secret, masterKey []byte, account string) (string, error) {
	if len(secret) == 0 {
		return "", errors.Join(ErrFailedToSealSecret, ErrMissingSecret)
	}
	aead, err := newAEAD(masterKey)
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	sealed := aead.Seal(nonce, nonce, secret, []byte(account))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenSecret reverses SealSecret for the same masterKey and account.
func OpenSecret(sealed string, masterKey []byte, account string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenSecret, err)
	}
	aead, err := newAEAD(masterKey)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenSecret, err)
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize+aead.Overhead() {
		return nil, errors.Join(ErrFailedToOpenSecret, ErrInvalidCipherTooShort)
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]

	secret, err := aead.Open(nil, nonce, ciphertext, []byte(account))
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenSecret, err)
	}
	return secret, nil
}

func newAEAD(masterKey []byte) (cipher.AEAD, error) {
	if len(masterKey) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}

	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(sealInfo)), key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateEncryptionKey creates a new random 32-byte master key.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return key, nil
}

// GenerateEncodedEncryptionKey returns a new master key as base64, the format
// expected in TOTP_ENCRYPTION_KEY.
func GenerateEncodedEncryptionKey() (string, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// GetEncryptionKey decodes the master key from cfg.
func GetEncryptionKey(cfg Config) ([]byte, error) {
	if cfg.EncryptionKey == "" {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrEncryptionKeyNotSet)
	}

	key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	if len(key) != AESKeySize {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrInvalidEncryptionKeyLength)
	}
	return key, nil
}
