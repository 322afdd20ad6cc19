package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"

	appErrors "github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/errors"
)

// Envelope layout, all integers big-endian:
//
//	magic    [8]byte  "CSFENC\x00\x01"  algorithm tag + format version
//	time     uint32   argon2id passes
//	memory   uint32   argon2id memory (KiB)
//	threads  uint8    argon2id parallelism
//	saltLen  uint8
//	salt     [saltLen]byte
//	nonce    [12]byte
//	payload  AES-256-GCM ciphertext || tag
var magic = []byte("CSFENC\x00\x01")

const (
	defaultTime    = 3
	defaultMemory  = 64 * 1024
	defaultThreads = 4
	saltSize       = 16
	keySize        = 32
	nonceSize      = 12

	// Header KDF parameters are read before the envelope is authenticated,
	// so they are capped to keep a corrupted header from forcing an
	// enormous key-derivation attempt.
	maxTime    = 16
	maxMemory  = 1024 * 1024 // KiB, 1 GiB
	maxThreads = 32
)

// IsEncrypted reports whether data starts with the envelope magic.
func IsEncrypted(data []byte) bool {
	return len(data) >= len(magic) && string(data[:len(magic)]) == string(magic)
}

// Encrypt seals plaintext under a password-derived key. The returned bytes
// carry a self-describing header so Decrypt needs only the password.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, appErrors.Wrap(fmt.Errorf("empty password"), appErrors.ErrValidation.Code, "password must not be empty")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, defaultTime, defaultMemory, defaultThreads, keySize)
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 0, len(magic)+10+saltSize+nonceSize)
	header = append(header, magic...)
	header = binary.BigEndian.AppendUint32(header, defaultTime)
	header = binary.BigEndian.AppendUint32(header, defaultMemory)
	header = append(header, defaultThreads, saltSize)
	header = append(header, salt...)
	header = append(header, nonce...)

	// The header is bound as additional data so tampering with KDF
	// parameters fails authentication.
	sealed := aead.Seal(nil, nonce, plaintext, header)
	return append(header, sealed...), nil
}

// Decrypt opens an envelope produced by Encrypt. A wrong password and a
// corrupted envelope are indistinguishable by design.
func Decrypt(envelope []byte, password string) ([]byte, error) {
	headerLen := len(magic) + 10 + saltSize + nonceSize
	if len(envelope) < headerLen || string(envelope[:len(magic)]) != string(magic) {
		return nil, appErrors.Clone(appErrors.ErrDecrypt, "unable to decrypt: wrong password or corrupted data")
	}

	off := len(magic)
	timeCost := binary.BigEndian.Uint32(envelope[off : off+4])
	memCost := binary.BigEndian.Uint32(envelope[off+4 : off+8])
	threads := envelope[off+8]
	saltLen := int(envelope[off+9])
	off += 10

	if timeCost == 0 || timeCost > maxTime || memCost > maxMemory || threads == 0 || threads > maxThreads {
		return nil, appErrors.Clone(appErrors.ErrDecrypt, "unable to decrypt: wrong password or corrupted data")
	}
	if saltLen != saltSize || len(envelope) < off+saltLen+nonceSize {
		return nil, appErrors.Clone(appErrors.ErrDecrypt, "unable to decrypt: wrong password or corrupted data")
	}
	salt := envelope[off : off+saltLen]
	off += saltLen
	nonce := envelope[off : off+nonceSize]
	off += nonceSize

	key := argon2.IDKey([]byte(password), salt, timeCost, memCost, threads, keySize)
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, envelope[off:], envelope[:headerLen])
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrDecrypt, "unable to decrypt: wrong password or corrupted data")
	}
	return plaintext, nil
}

// EncryptedFilename inserts ".enc" before the final extension, so
// "export.csv" becomes "export.enc.csv".
func EncryptedFilename(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return filename + ".enc"
	}
	return strings.TrimSuffix(filename, ext) + ".enc" + ext
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
