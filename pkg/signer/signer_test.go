package signer

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// testPrivateKey is 31 zero bytes followed by 0x01.
func testPrivateKey() []byte {
	key := make([]byte, PrivateKeySize)
	key[PrivateKeySize-1] = 1
	return key
}

func TestDigest_KnownVector(t *testing.T) {
	digest := Digest([]byte("hello"))
	require.Equal(t,
		"1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
		hex.EncodeToString(digest[:]),
	)
}

func TestSign_Deterministic(t *testing.T) {
	key := testPrivateKey()
	digest := Digest([]byte("hello"))

	sig1, rec1, err := Sign(key, digest)
	require.NoError(t, err)
	sig2, rec2, err := Sign(key, digest)
	require.NoError(t, err)

	require.Equal(t, sig1, sig2, "same key and digest must yield the same signature")
	require.Equal(t, rec1, rec2)
}

func TestSign_RecoveryIDRange(t *testing.T) {
	key := testPrivateKey()
	_, recID, err := Sign(key, Digest([]byte("hello")))
	require.NoError(t, err)
	require.LessOrEqual(t, recID, byte(1))
}

func TestSign_RecoverMatchesPublicKey(t *testing.T) {
	key := testPrivateKey()
	messages := [][]byte{
		[]byte("hello"),
		[]byte(""),
		[]byte("a much longer message to make sure recovery works for arbitrary content"),
	}

	expected, err := PublicKey(key)
	require.NoError(t, err)
	require.Len(t, expected, PublicKeySize)

	for _, msg := range messages {
		digest := Digest(msg)
		sig, recID, err := Sign(key, digest)
		require.NoError(t, err)

		recovered, err := RecoverPublicKey(sig, recID, digest)
		require.NoError(t, err)
		require.Equal(t, expected, recovered)
	}
}

func TestSign_InvalidKeyMaterial(t *testing.T) {
	digest := Digest([]byte("hello"))

	t.Run("short key", func(t *testing.T) {
		_, _, err := Sign(make([]byte, 16), digest)
		require.ErrorIs(t, err, ErrSigning)
	})
	t.Run("zero key", func(t *testing.T) {
		_, _, err := Sign(make([]byte, PrivateKeySize), digest)
		require.ErrorIs(t, err, ErrSigning)
	})
}

func TestRecoverPublicKey_BadRecoveryID(t *testing.T) {
	_, err := RecoverPublicKey([64]byte{}, 4, Digest([]byte("x")))
	require.ErrorIs(t, err, ErrSigning)
}

func TestEthAddress_KnownVector(t *testing.T) {
	// Well-known address for private key 0x...01.
	addr, err := EthAddress(testPrivateKey())
	require.NoError(t, err)
	require.Equal(t,
		"7e5f4552091a69125d5dfcb7b8c2659029395bdf",
		hex.EncodeToString(addr[:]),
	)
}

func TestEthAddress_InvalidKey(t *testing.T) {
	_, err := EthAddress([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrSigning)
}
