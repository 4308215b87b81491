package record

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func validSignerBytes(version byte, group [32]byte, ethAddress [20]byte) []byte {
	data := make([]byte, 0, ValidSignerRecordLen)
	data = append(data, version)
	data = append(data, group[:]...)
	data = append(data, ethAddress[:]...)
	return data
}

func TestExtractSignerGroup(t *testing.T) {
	var group [32]byte
	for i := range group {
		group[i] = byte(i + 1)
	}
	var addr [20]byte
	for i := range addr {
		addr[i] = 0xaa
	}

	got, err := ExtractSignerGroup(validSignerBytes(1, group, addr))
	require.NoError(t, err)
	require.Equal(t, solana.PublicKeyFromBytes(group[:]), got)
}

func TestExtractSignerGroup_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"version only", []byte{1}},
		{"one byte short of key", make([]byte, 32)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractSignerGroup(tc.data)
			require.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestExtractSignerGroup_IgnoresTrailingFields(t *testing.T) {
	// Exactly version + key, no eth address: still extractable.
	data := make([]byte, 33)
	data[0] = 1
	data[1] = 0xff

	got, err := ExtractSignerGroup(data)
	require.NoError(t, err)
	require.Equal(t, byte(0xff), got[0])
}

func TestParseValidSigner(t *testing.T) {
	var group [32]byte
	group[0] = 0x11
	var addr [20]byte
	addr[0] = 0x22

	vs, err := ParseValidSigner(validSignerBytes(1, group, addr))
	require.NoError(t, err)
	require.Equal(t, byte(1), vs.Version)
	require.Equal(t, solana.PublicKeyFromBytes(group[:]), vs.SignerGroup)
	require.Equal(t, addr, vs.EthAddress)
}

func TestParseValidSigner_WrongLength(t *testing.T) {
	_, err := ParseValidSigner(make([]byte, ValidSignerRecordLen-1))
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseValidSigner(make([]byte, ValidSignerRecordLen+1))
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseSignerGroup(t *testing.T) {
	data := make([]byte, SignerGroupRecordLen)
	data[0] = 1
	data[1] = 0x33

	sg, err := ParseSignerGroup(data)
	require.NoError(t, err)
	require.Equal(t, byte(1), sg.Version)
	require.Equal(t, byte(0x33), sg.Owner[0])
}

func TestParseSignerGroup_WrongLength(t *testing.T) {
	_, err := ParseSignerGroup(make([]byte, 32))
	require.ErrorIs(t, err, ErrMalformedRecord)
}
