// Package verifier orchestrates one verification round trip: look up the
// valid-signer account, sign the payload, assemble the check and program
// instructions, and submit the transaction.
package verifier

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/attestlabs/solana-attest-go/pkg/config"
	"github.com/attestlabs/solana-attest-go/pkg/instruction"
	"github.com/attestlabs/solana-attest-go/pkg/ledger"
	"github.com/attestlabs/solana-attest-go/pkg/payload"
	"github.com/attestlabs/solana-attest-go/pkg/record"
	"github.com/attestlabs/solana-attest-go/pkg/signer"
)

// Service performs signature attestations against the signer-registry and
// track-listen programs. One logical request per call; no internal
// parallelism or retries. Shared state (fee payer, endpoints, program keys)
// is fixed at construction.
type Service struct {
	client          ledger.Client
	submitter       *ledger.Submitter
	registryProgram solana.PublicKey
	trackProgram    solana.PublicKey
	log             *zap.Logger
}

// NewService wires a Service from a ledger client, the fee payer keypair,
// and validated configuration.
func NewService(client ledger.Client, feePayer solana.PrivateKey, cfg *config.ClientConfig, log *zap.Logger) *Service {
	return &Service{
		client:          client,
		submitter:       ledger.NewSubmitter(client, feePayer, log),
		registryProgram: cfg.RegistryProgram(),
		trackProgram:    cfg.TrackProgram(),
		log:             log,
	}
}

// ValidateSignature signs a raw message and submits it for on-chain
// verification against the given valid-signer record. Returns the confirmed
// transaction signature.
func (s *Service) ValidateSignature(ctx context.Context, validSigner solana.PublicKey, privateKey, message []byte) (solana.Signature, error) {
	group, err := s.lookupSignerGroup(ctx, validSigner)
	if err != nil {
		return solana.Signature{}, err
	}

	msg, err := payload.NewSignedMessage(privateKey, message)
	if err != nil {
		return solana.Signature{}, err
	}
	ethAddr, err := signer.EthAddress(privateKey)
	if err != nil {
		return solana.Signature{}, err
	}

	// The check instruction must precede the program instruction: the
	// program cross-references the precompile's recovered address through
	// the instructions sysvar.
	checkIx := instruction.NewSecp256k1Instruction(ethAddr, msg.Signature, msg.RecoveryID, msg.Message, 0)
	progIx, err := instruction.NewValidateSignatureInstruction(s.registryProgram, validSigner, group, msg)
	if err != nil {
		return solana.Signature{}, err
	}

	s.log.Debug("submitting raw-message verification",
		zap.String("validSigner", validSigner.String()),
		zap.String("signerGroup", group.String()),
		zap.Int("messageLen", len(msg.Message)),
	)
	return s.submitter.Submit(ctx, []solana.Instruction{checkIx, progIx})
}

// CreateAndVerifyMessage signs a structured track-data payload and submits
// it to the track-listen program. The signature covers the serialized track
// data, byte for byte.
func (s *Service) CreateAndVerifyMessage(ctx context.Context, validSigner solana.PublicKey, privateKey []byte, track payload.TrackData) (solana.Signature, error) {
	group, err := s.lookupSignerGroup(ctx, validSigner)
	if err != nil {
		return solana.Signature{}, err
	}

	env, err := payload.NewTrackEnvelope(privateKey, track)
	if err != nil {
		return solana.Signature{}, err
	}
	ethAddr, err := signer.EthAddress(privateKey)
	if err != nil {
		return solana.Signature{}, err
	}

	checkIx := instruction.NewSecp256k1Instruction(ethAddr, env.Signature, env.RecoveryID, env.SerializedTrack, 0)
	progIx, err := instruction.NewTrackListenInstruction(s.trackProgram, s.registryProgram, validSigner, group, env)
	if err != nil {
		return solana.Signature{}, err
	}

	s.log.Debug("submitting track-listen verification",
		zap.String("validSigner", validSigner.String()),
		zap.String("signerGroup", group.String()),
		zap.String("trackId", track.TrackID),
	)
	return s.submitter.Submit(ctx, []solana.Instruction{checkIx, progIx})
}

// lookupSignerGroup fetches the valid-signer account and extracts its
// owning signer-group key. The lookup must complete before assembly: the
// group key is part of the program instruction's account list.
func (s *Service) lookupSignerGroup(ctx context.Context, validSigner solana.PublicKey) (solana.PublicKey, error) {
	data, err := s.client.GetAccountInfo(ctx, validSigner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	group, err := record.ExtractSignerGroup(data)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "valid signer %s", validSigner)
	}
	return group, nil
}
