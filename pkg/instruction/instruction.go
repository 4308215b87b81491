// Package instruction assembles the ledger instructions a verification
// transaction carries: the secp256k1 precompile check followed by the
// target-program instruction whose data the program deserializes.
package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/attestlabs/solana-attest-go/pkg/payload"
	"github.com/attestlabs/solana-attest-go/pkg/signer"
)

var (
	// Secp256k1ProgramID is the native secp256k1 signature-check program.
	Secp256k1ProgramID = solana.MustPublicKeyFromBase58("KeccakSecp256k11111111111111111111111111111")
	// SysVarInstructionsPubkey lets a program introspect sibling
	// instructions in the same transaction.
	SysVarInstructionsPubkey = solana.MustPublicKeyFromBase58("Sysvar1nstructions1111111111111111111111111")
)

// Secp256k1 instruction data layout for a single signature:
// count(1) || offsets(11) || eth_address(20) || signature(64) ||
// recovery_id(1) || message.
const (
	secpOffsetsLen    = 11
	secpDataStart     = 1 + secpOffsetsLen
	secpEthAddressPos = secpDataStart
	secpSignaturePos  = secpEthAddressPos + signer.EthAddressSize
	secpMessagePos    = secpSignaturePos + signer.SignatureSize + 1
	envelopeHeaderLen = 1 + signer.SignatureSize + 1 // tag + signature + recovery id
	lengthSlotLen     = 4
	shortLengthMax    = 255
)

// NewSecp256k1Instruction builds the precompile check instruction for one
// signature. The precompile recovers an address from signature, recovery id,
// and message and verifies it equals ethAddress; instructionIndex is the
// position of this instruction in the transaction (offsets are self-
// referential). The precompile takes no accounts.
func NewSecp256k1Instruction(ethAddress [20]byte, signature [64]byte, recoveryID byte, message []byte, instructionIndex uint8) solana.Instruction {
	data := make([]byte, 0, secpMessagePos+len(message))
	data = append(data, 1) // signature count

	var offsets [secpOffsetsLen]byte
	binary.LittleEndian.PutUint16(offsets[0:2], uint16(secpSignaturePos))
	offsets[2] = instructionIndex
	binary.LittleEndian.PutUint16(offsets[3:5], uint16(secpEthAddressPos))
	offsets[5] = instructionIndex
	binary.LittleEndian.PutUint16(offsets[6:8], uint16(secpMessagePos))
	binary.LittleEndian.PutUint16(offsets[8:10], uint16(len(message)))
	offsets[10] = instructionIndex
	data = append(data, offsets[:]...)

	data = append(data, ethAddress[:]...)
	data = append(data, signature[:]...)
	data = append(data, recoveryID)
	data = append(data, message...)

	return solana.NewInstruction(Secp256k1ProgramID, solana.AccountMetaSlice{}, data)
}

// PatchMessageLength splices the 4-byte message-length slot into a
// serialized raw-message envelope at the fixed offset the receiving program
// reads: right after the tag, signature, and recovery byte. Lengths below
// 256 occupy a single byte of the slot; longer messages occupy the first two
// bytes as little-endian. The remaining slot bytes are zero.
//
// The schema encoder cannot place this field (it sits inside an otherwise
// contiguous variant body), so it is applied as an explicit transformation
// after encoding.
func PatchMessageLength(envelope []byte, messageLen int) ([]byte, error) {
	if len(envelope) < envelopeHeaderLen {
		return nil, fmt.Errorf("envelope too short to patch: %d bytes", len(envelope))
	}
	if messageLen != len(envelope)-envelopeHeaderLen {
		return nil, fmt.Errorf("message length %d does not match envelope payload %d", messageLen, len(envelope)-envelopeHeaderLen)
	}
	if messageLen > payload.MaxMessageLen {
		return nil, fmt.Errorf("%w: %d bytes", payload.ErrMessageTooLong, messageLen)
	}

	var slot [lengthSlotLen]byte
	if messageLen <= shortLengthMax {
		slot[0] = byte(messageLen)
	} else {
		binary.LittleEndian.PutUint16(slot[0:2], uint16(messageLen))
	}

	patched := make([]byte, 0, len(envelope)+lengthSlotLen)
	patched = append(patched, envelope[:envelopeHeaderLen]...)
	patched = append(patched, slot[:]...)
	patched = append(patched, envelope[envelopeHeaderLen:]...)
	return patched, nil
}

// NewValidateSignatureInstruction builds the signer-registry program
// instruction carrying a raw-message envelope. Account order is fixed by the
// program: valid signer, signer group, then the instructions sysvar, all
// read-only.
func NewValidateSignatureInstruction(programID, validSigner, signerGroup solana.PublicKey, msg *payload.SignedMessage) (solana.Instruction, error) {
	serialized, err := msg.Serialize()
	if err != nil {
		return nil, err
	}
	data, err := PatchMessageLength(serialized, len(msg.Message))
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		&solana.AccountMeta{PublicKey: validSigner},
		&solana.AccountMeta{PublicKey: signerGroup},
		&solana.AccountMeta{PublicKey: SysVarInstructionsPubkey},
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// NewTrackListenInstruction builds the track-listen program instruction
// carrying a structured envelope. The track-listen program additionally
// references the signer-registry program account it defers verification to.
func NewTrackListenInstruction(programID, registryProgramID, validSigner, signerGroup solana.PublicKey, env *payload.TrackEnvelope) (solana.Instruction, error) {
	data, err := env.Serialize()
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		&solana.AccountMeta{PublicKey: validSigner},
		&solana.AccountMeta{PublicKey: signerGroup},
		&solana.AccountMeta{PublicKey: registryProgramID},
		&solana.AccountMeta{PublicKey: SysVarInstructionsPubkey},
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
