package security

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := NewEncryptor(key)
	require.NoError(t, err)
	return encryptor
}

func TestEncryptor_SealOpen(t *testing.T) {
	encryptor := newTestEncryptor(t)

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{name: "symptom document", plaintext: []byte(`[{"id":"1","symptom":"headache","severity":7}]`)},
		{name: "empty document", plaintext: []byte{}},
		{name: "unicode", plaintext: []byte("Fáj a fejem és rossz a közérzetem")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := encryptor.Seal(tc.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tc.plaintext, sealed)

			opened, err := encryptor.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, string(tc.plaintext), string(opened))
		})
	}
}

func TestEncryptor_EncryptDecrypt(t *testing.T) {
	encryptor := newTestEncryptor(t)

	for _, plaintext := range []string{"Hello, World!", "chest pain since yesterday", ""} {
		ciphertext, err := encryptor.Encrypt(plaintext)
		require.NoError(t, err)

		if plaintext == "" {
			assert.Equal(t, "", ciphertext)
			continue
		}
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := encryptor.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptor_InvalidKey(t *testing.T) {
	testCases := []struct {
		name    string
		keySize int
	}{
		{name: "too short", keySize: 16},
		{name: "too long", keySize: 64},
		{name: "empty", keySize: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEncryptor(make([]byte, tc.keySize))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "encryption key must be 32 bytes")
		})
	}
}

func TestNewEncryptorFromBase64(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	_, err = NewEncryptorFromBase64(base64.StdEncoding.EncodeToString(key))
	assert.NoError(t, err)

	_, err = NewEncryptorFromBase64("not-valid-base64!!!")
	assert.Error(t, err)
}

func TestEncryptor_DifferentCiphertexts(t *testing.T) {
	encryptor := newTestEncryptor(t)
	plaintext := []byte("sensitive health data")

	first, err := encryptor.Seal(plaintext)
	require.NoError(t, err)
	second, err := encryptor.Seal(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "sealing the same plaintext twice should use different nonces")
}

func TestEncryptor_OpenRejectsTampering(t *testing.T) {
	encryptor := newTestEncryptor(t)

	sealed, err := encryptor.Seal([]byte("severity 9"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = encryptor.Open(sealed)
	assert.Error(t, err)

	_, err = encryptor.Open([]byte("abc"))
	assert.Error(t, err)

	_, err = encryptor.Decrypt("not-valid-base64!!!")
	assert.Error(t, err)
}
