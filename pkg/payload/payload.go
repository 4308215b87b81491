// Package payload builds the two signed envelopes the verification programs
// deserialize: a raw-message envelope for the signer-registry program and a
// structured track-data envelope for the track-listen program.
//
// Both programs hand-parse fixed byte layouts, so the schemas declared here
// are a wire contract: variant order and field order must not change without
// a coordinated program upgrade.
package payload

import (
	"errors"
	"fmt"

	"github.com/attestlabs/solana-attest-go/pkg/schema"
	"github.com/attestlabs/solana-attest-go/pkg/signer"
)

// Registry program instruction variants, in wire-tag order.
const (
	VariantInitSignerGroup  = "initSignerGroup"
	VariantInitValidSigner  = "initValidSigner"
	VariantClearValidSigner = "clearValidSigner"
	VariantInstruction      = "instruction"
)

// RegistryInstructionTag is the wire tag of the raw-message verification
// variant: index 3 in the registry program's declared enum.
const RegistryInstructionTag = 3

// TrackInstructionTag is the wire tag of the track-listen program's single
// variant.
const TrackInstructionTag = 0

// MaxMessageLen bounds raw messages so their byte length always fits the
// two-byte patched length slot the receiving program reads.
const MaxMessageLen = 65535

// ErrMessageTooLong indicates a raw message exceeding MaxMessageLen.
var ErrMessageTooLong = errors.New("message exceeds maximum length")

// RegistryInstructionSchema declares the registry program's full instruction
// enum for a raw message of msgLen bytes. Variant order matches the
// program's own enum; the provisioning variants are declared so their tag
// indices stay part of the shared contract even though this client never
// builds them.
func RegistryInstructionSchema(msgLen int) *schema.Type {
	return schema.EnumOf(
		schema.Variant{Name: VariantInitSignerGroup, Type: schema.StructOf()},
		schema.Variant{Name: VariantInitValidSigner, Type: schema.StructOf(
			schema.Field{Name: "eth_address", Type: schema.Bytes(signer.EthAddressSize)},
		)},
		schema.Variant{Name: VariantClearValidSigner, Type: schema.StructOf()},
		schema.Variant{Name: VariantInstruction, Type: schema.StructOf(
			schema.Field{Name: "signature", Type: schema.Bytes(signer.SignatureSize)},
			schema.Field{Name: "recovery_id", Type: schema.U8()},
			schema.Field{Name: "message", Type: schema.Bytes(msgLen)},
		)},
	)
}

// TrackDataSchema declares the structured track-data payload.
func TrackDataSchema() *schema.Type {
	return schema.StructOf(
		schema.Field{Name: "user_id", Type: schema.String()},
		schema.Field{Name: "track_id", Type: schema.String()},
		schema.Field{Name: "source", Type: schema.String()},
	)
}

// TrackInstructionSchema declares the track-listen program's single-variant
// instruction enum.
func TrackInstructionSchema() *schema.Type {
	return schema.EnumOf(
		schema.Variant{Name: VariantInstruction, Type: schema.StructOf(
			schema.Field{Name: "track_data", Type: TrackDataSchema()},
			schema.Field{Name: "signature", Type: schema.Bytes(signer.SignatureSize)},
			schema.Field{Name: "recovery_id", Type: schema.U8()},
		)},
	)
}

// SignedMessage is the raw-message verification envelope.
type SignedMessage struct {
	Signature  [64]byte
	RecoveryID byte
	Message    []byte
}

// NewSignedMessage signs keccak256(message) with the given private key and
// wraps the result in an envelope.
func NewSignedMessage(privateKey, message []byte) (*SignedMessage, error) {
	if len(message) > MaxMessageLen {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrMessageTooLong, len(message), MaxMessageLen)
	}
	sig, recID, err := signer.Sign(privateKey, signer.Digest(message))
	if err != nil {
		return nil, err
	}
	return &SignedMessage{Signature: sig, RecoveryID: recID, Message: message}, nil
}

// Serialize encodes the envelope as the registry enum's "instruction"
// variant: tag 3, then signature, recovery id, and the raw message bytes.
func (m *SignedMessage) Serialize() ([]byte, error) {
	return schema.Encode(RegistryInstructionSchema(len(m.Message)), schema.Enum{
		Variant: VariantInstruction,
		Fields: map[string]any{
			"signature":   m.Signature[:],
			"recovery_id": m.RecoveryID,
			"message":     m.Message,
		},
	})
}

// ParseSignedMessage decodes a serialized raw-message envelope. The message
// length is whatever remains after the tag, signature, and recovery byte.
func ParseSignedMessage(data []byte) (*SignedMessage, error) {
	header := 1 + signer.SignatureSize + 1
	if len(data) < header {
		return nil, fmt.Errorf("%w: envelope shorter than %d bytes", schema.ErrMismatch, header)
	}
	v, err := schema.Decode(RegistryInstructionSchema(len(data)-header), data)
	if err != nil {
		return nil, err
	}
	e := v.(schema.Enum)
	if e.Variant != VariantInstruction {
		return nil, fmt.Errorf("%w: unexpected variant %q", schema.ErrMismatch, e.Variant)
	}
	m := &SignedMessage{
		RecoveryID: e.Fields["recovery_id"].(byte),
		Message:    e.Fields["message"].([]byte),
	}
	copy(m.Signature[:], e.Fields["signature"].([]byte))
	return m, nil
}

// TrackData identifies one track listen to attest.
type TrackData struct {
	UserID  string
	TrackID string
	Source  string
}

// TrackEnvelope is the structured verification envelope. The digest is
// computed over the serialized track data, not its logical fields, so the
// serialized form is kept for the precompile instruction to reference.
type TrackEnvelope struct {
	Track           TrackData
	SerializedTrack []byte
	Signature       [64]byte
	RecoveryID      byte
}

// NewTrackEnvelope serializes track data, signs keccak256 of the serialized
// bytes, and wraps the result.
func NewTrackEnvelope(privateKey []byte, track TrackData) (*TrackEnvelope, error) {
	serialized, err := schema.Encode(TrackDataSchema(), map[string]any{
		"user_id":  track.UserID,
		"track_id": track.TrackID,
		"source":   track.Source,
	})
	if err != nil {
		return nil, err
	}
	sig, recID, err := signer.Sign(privateKey, signer.Digest(serialized))
	if err != nil {
		return nil, err
	}
	return &TrackEnvelope{
		Track:           track,
		SerializedTrack: serialized,
		Signature:       sig,
		RecoveryID:      recID,
	}, nil
}

// Serialize encodes the envelope as the track-listen enum's only variant:
// tag 0, then track data, signature, and recovery id.
func (e *TrackEnvelope) Serialize() ([]byte, error) {
	return schema.Encode(TrackInstructionSchema(), schema.Enum{
		Variant: VariantInstruction,
		Fields: map[string]any{
			"track_data": map[string]any{
				"user_id":  e.Track.UserID,
				"track_id": e.Track.TrackID,
				"source":   e.Track.Source,
			},
			"signature":   e.Signature[:],
			"recovery_id": e.RecoveryID,
		},
	})
}
