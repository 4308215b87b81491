// Package ledger wraps the ledger RPC surface this client needs: account
// lookup and transaction submission with confirmation.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	sendandconfirmtransaction "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

var (
	// ErrAccountNotFound indicates a referenced account does not exist on
	// the ledger.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSubmission indicates an RPC failure or ledger rejection during
	// transaction submission.
	ErrSubmission = errors.New("transaction submission failed")
)

// Client abstracts the two network operations a verification round trip
// performs, in order: account lookup, then submit-and-confirm.
type Client interface {
	// GetAccountInfo returns the raw data bytes of an account, or
	// ErrAccountNotFound.
	GetAccountInfo(ctx context.Context, account solana.PublicKey) ([]byte, error)

	// LatestBlockhash returns a recent blockhash to anchor a transaction.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// SendAndConfirm submits a signed transaction and blocks until the
	// ledger reports confirmation.
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// RPCClient implements Client against a JSON-RPC endpoint plus a websocket
// endpoint for confirmation subscriptions.
type RPCClient struct {
	rpc *rpc.Client
	ws  *ws.Client
	log *zap.Logger
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient connects to the given endpoints. Cancellation and timeouts
// are the caller's via ctx; no retries are performed here.
func NewRPCClient(ctx context.Context, rpcURL, wsURL string, log *zap.Logger) (*RPCClient, error) {
	wsClient, err := ws.Connect(ctx, wsURL)
	if err != nil {
		return nil, fmt.Errorf("connecting websocket endpoint %s: %w", wsURL, err)
	}
	return &RPCClient{
		rpc: rpc.New(rpcURL),
		ws:  wsClient,
		log: log,
	}, nil
}

// Close releases the websocket connection.
func (c *RPCClient) Close() {
	c.ws.Close()
}

func (c *RPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	res, err := c.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
		}
		return nil, fmt.Errorf("fetching account %s: %w", account, err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	return res.Value.Data.GetBinary(), nil
}

func (c *RPCClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("fetching latest blockhash: %w", err)
	}
	return res.Value.Blockhash, nil
}

func (c *RPCClient) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := sendandconfirmtransaction.SendAndConfirmTransaction(ctx, c.rpc, c.ws, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	c.log.Debug("transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}
