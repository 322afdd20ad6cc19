package crypto

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("ID,Assessment\nGV.OC-01,Annual 2025\n")

	sealed, err := Encrypt(plaintext, "hunter2")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(sealed))
	assert.NotContains(t, string(sealed), "Annual 2025")

	opened, err := Decrypt(sealed, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestDecryptWrongPassword(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "correct")
	require.NoError(t, err)

	_, err = Decrypt(sealed, "wrong")
	assert.Error(t, err)
}

func TestDecryptTamperedPayload(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "pw")
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = Decrypt(sealed, "pw")
	assert.Error(t, err)
}

// A corrupted header must not drive the key derivation: oversized or zero
// KDF parameters are rejected before any memory is committed.
func TestDecryptRejectsRunawayKDFParameters(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "pw")
	require.NoError(t, err)

	hostile := append([]byte(nil), sealed...)
	binary.BigEndian.PutUint32(hostile[len(magic)+4:], 0xFFFFFFFF)
	_, err = Decrypt(hostile, "pw")
	assert.Error(t, err)

	hostile = append([]byte(nil), sealed...)
	binary.BigEndian.PutUint32(hostile[len(magic):], 0)
	_, err = Decrypt(hostile, "pw")
	assert.Error(t, err)

	hostile = append([]byte(nil), sealed...)
	hostile[len(magic)+8] = 0
	_, err = Decrypt(hostile, "pw")
	assert.Error(t, err)
}

func TestDecryptRejectsPlaintext(t *testing.T) {
	_, err := Decrypt([]byte("just a csv file"), "pw")
	assert.Error(t, err)
	assert.False(t, IsEncrypted([]byte("just a csv file")))
}

func TestEncryptedFilename(t *testing.T) {
	assert.Equal(t, "report.enc.csv", EncryptedFilename("report.csv"))
	assert.Equal(t, "archive.tar.enc.gz", EncryptedFilename("archive.tar.gz"))
	assert.Equal(t, "noext.enc", EncryptedFilename("noext"))
}
