package service

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyServiceGenerate(t *testing.T) {
	km := NewKeyService(20, 32)

	kp, err := km.Generate()
	require.NoError(t, err)

	// Hex doubles the byte length.
	assert.Len(t, kp.Address, 40)
	assert.Len(t, kp.PrivateKey, 64)
	assert.Len(t, kp.PrivateKeyHash, 64) // sha256 hex

	// Stored hash is the digest of the returned key.
	sum := sha256.Sum256([]byte(kp.PrivateKey))
	assert.Equal(t, hex.EncodeToString(sum[:]), kp.PrivateKeyHash)
}

func TestKeyServiceGenerateUnique(t *testing.T) {
	km := NewKeyService(20, 32)

	a, err := km.Generate()
	require.NoError(t, err)
	b, err := km.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a.Address, b.Address)
	assert.NotEqual(t, a.PrivateKey, b.PrivateKey)
}

func TestKeyServiceVerify(t *testing.T) {
	km := NewKeyService(20, 32)
	kp, err := km.Generate()
	require.NoError(t, err)

	assert.True(t, km.Verify(kp.PrivateKey, kp.PrivateKeyHash))
	assert.False(t, km.Verify("wrong-key", kp.PrivateKeyHash))
	assert.False(t, km.Verify("", kp.PrivateKeyHash))
	assert.False(t, km.Verify(kp.PrivateKey, ""))
}

func TestKeyServiceDefaultLengths(t *testing.T) {
	km := NewKeyService(0, 0)
	kp, err := km.Generate()
	require.NoError(t, err)

	assert.Len(t, kp.Address, 40)
	assert.Len(t, kp.PrivateKey, 64)
}

func TestHashKeyDeterministic(t *testing.T) {
	assert.Equal(t, HashKey("abc"), HashKey("abc"))
	assert.NotEqual(t, HashKey("abc"), HashKey("abd"))
}
