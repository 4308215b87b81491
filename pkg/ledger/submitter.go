package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Submitter orders instructions into a transaction, attaches the fee payer,
// and submits it. The fee payer keypair is fixed for the lifetime of the
// process and never mutated.
type Submitter struct {
	client   Client
	feePayer solana.PrivateKey
	log      *zap.Logger
}

// NewSubmitter creates a Submitter for the given fee payer.
func NewSubmitter(client Client, feePayer solana.PrivateKey, log *zap.Logger) *Submitter {
	return &Submitter{
		client:   client,
		feePayer: feePayer,
		log:      log,
	}
}

// Submit builds a transaction carrying the instructions in the given order,
// signs it with the fee payer, and blocks until confirmation. Instruction
// order is preserved exactly: callers rely on the signature-check
// instruction preceding the program instruction. Failures are surfaced as
// ErrSubmission; nothing is retried.
func (s *Submitter) Submit(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	blockhash, err := s.client.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(s.feePayer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: building transaction: %v", ErrSubmission, err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.feePayer.PublicKey()) {
			return &s.feePayer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: signing transaction: %v", ErrSubmission, err)
	}

	sig, err := s.client.SendAndConfirm(ctx, tx)
	if err != nil {
		if errors.Is(err, ErrSubmission) {
			return solana.Signature{}, err
		}
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	s.log.Info("transaction confirmed",
		zap.String("signature", sig.String()),
		zap.Int("instructions", len(instructions)),
	)
	return sig, nil
}
