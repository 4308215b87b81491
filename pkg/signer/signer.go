// Package signer computes Keccak-256 digests and secp256k1 signatures with
// recovery metadata, matching what the on-chain secp256k1 precompile and the
// verification programs re-check.
package signer

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// PrivateKeySize is the raw secp256k1 scalar length in bytes.
	PrivateKeySize = 32
	// SignatureSize is the length of an r||s signature in bytes.
	SignatureSize = 64
	// PublicKeySize is the length of an uncompressed secp256k1 point.
	PublicKeySize = 65
	// EthAddressSize is the length of a derived Ethereum-style address.
	EthAddressSize = 20
)

// ErrSigning indicates invalid key material or a failed signing operation.
var ErrSigning = errors.New("signing failed")

// Digest returns the Keccak-256 hash of data.
func Digest(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(data))
	return out
}

// Sign produces a deterministic secp256k1 signature over the given 32-byte
// digest. The same key and digest always yield the same signature. The
// returned recovery id is 0 or 1.
func Sign(privateKey []byte, digest [32]byte) (signature [64]byte, recoveryID byte, err error) {
	if len(privateKey) != PrivateKeySize {
		return signature, 0, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrSigning, PrivateKeySize, len(privateKey))
	}
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return signature, 0, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	sig, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return signature, 0, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	// go-ethereum returns r||s||v with v in {0,1}
	copy(signature[:], sig[:SignatureSize])
	return signature, sig[SignatureSize], nil
}

// RecoverPublicKey reconstructs the uncompressed 65-byte public key from a
// signature, its recovery id, and the signed digest.
func RecoverPublicKey(signature [64]byte, recoveryID byte, digest [32]byte) ([]byte, error) {
	if recoveryID > 3 {
		return nil, fmt.Errorf("%w: recovery id %d out of range", ErrSigning, recoveryID)
	}
	full := make([]byte, SignatureSize+1)
	copy(full, signature[:])
	full[SignatureSize] = recoveryID
	pub, err := ethcrypto.Ecrecover(digest[:], full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return pub, nil
}

// PublicKey derives the uncompressed 65-byte public key for a private key.
func PublicKey(privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrSigning, PrivateKeySize, len(privateKey))
	}
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return ethcrypto.FromECDSAPub(&key.PublicKey), nil
}

// EthAddress derives the 20-byte address stored in on-chain valid-signer
// records: the last 20 bytes of keccak256(pubkey[1:]).
func EthAddress(privateKey []byte) ([EthAddressSize]byte, error) {
	var addr [EthAddressSize]byte
	if len(privateKey) != PrivateKeySize {
		return addr, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrSigning, PrivateKeySize, len(privateKey))
	}
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	copy(addr[:], ethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	return addr, nil
}
