package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/attestlabs/solana-attest-go/pkg/config"
	"github.com/attestlabs/solana-attest-go/pkg/ledger"
	"github.com/attestlabs/solana-attest-go/pkg/logger"
	"github.com/attestlabs/solana-attest-go/pkg/payload"
	"github.com/attestlabs/solana-attest-go/pkg/verifier"
)

func main() {
	app := &cli.App{
		Name:  "attest",
		Usage: "Submit secp256k1 signature attestations to the on-chain verification programs",
		Description: `Signs payloads with a secp256k1 key and submits them as ledger
transactions. Each transaction carries the native signature-check instruction
followed by the verification program instruction; the confirmed transaction
signature is printed on success.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "JSON-RPC endpoint URL",
				Value:   "http://localhost:8899",
				EnvVars: []string{config.EnvAttestRPCURL},
			},
			&cli.StringFlag{
				Name:    "ws-url",
				Usage:   "Websocket endpoint URL used to await confirmation",
				Value:   "ws://localhost:8900",
				EnvVars: []string{config.EnvAttestWSURL},
			},
			&cli.StringFlag{
				Name:     "registry-program",
				Usage:    "Signer-registry program address (base58)",
				EnvVars:  []string{config.EnvAttestRegistryProgramID},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "track-program",
				Usage:   "Track-listen program address (base58)",
				EnvVars: []string{config.EnvAttestTrackProgramID},
			},
			&cli.StringFlag{
				Name:     "fee-payer",
				Usage:    "Path to the fee payer's solana keygen file",
				EnvVars:  []string{config.EnvAttestFeePayerKeypair},
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvAttestDebug},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "validate-signature",
				Usage: "Sign a raw message and verify it on chain",
				Flags: []cli.Flag{
					validSignerFlag(),
					privateKeyFlag(),
					&cli.StringFlag{
						Name:     "message",
						Usage:    "Message to sign",
						Required: true,
					},
				},
				Action: runValidateSignature,
			},
			{
				Name:  "create-and-verify",
				Usage: "Sign structured track data and verify it on chain",
				Flags: []cli.Flag{
					validSignerFlag(),
					privateKeyFlag(),
					&cli.StringFlag{Name: "user-id", Usage: "Listening user id", Required: true},
					&cli.StringFlag{Name: "track-id", Usage: "Track id", Required: true},
					&cli.StringFlag{Name: "source", Usage: "Listen source", Required: true},
				},
				Action: runCreateAndVerify,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func validSignerFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "valid-signer",
		Usage:    "Valid-signer account address (base58)",
		Required: true,
	}
}

func privateKeyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "private-key",
		Usage:    "secp256k1 private key (32 bytes, hex)",
		Required: true,
	}
}

// setup builds the shared pieces every command needs: validated config,
// logger, ledger client, fee payer, and the verifier service.
func setup(c *cli.Context) (*verifier.Service, *ledger.RPCClient, error) {
	cfg := &config.ClientConfig{
		RPCURL:              c.String("rpc-url"),
		WSURL:               c.String("ws-url"),
		RegistryProgramID:   c.String("registry-program"),
		TrackProgramID:      c.String("track-program"),
		FeePayerKeypairPath: c.String("fee-payer"),
		Debug:               c.Bool("debug"),
	}
	// The track program is only needed by create-and-verify; default it to
	// the registry program so validation passes for raw-message usage.
	if cfg.TrackProgramID == "" {
		cfg.TrackProgramID = cfg.RegistryProgramID
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, nil, err
	}

	feePayer, err := solana.PrivateKeyFromSolanaKeygenFile(cfg.FeePayerKeypairPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading fee payer keypair: %w", err)
	}

	client, err := ledger.NewRPCClient(c.Context, cfg.RPCURL, cfg.WSURL, l)
	if err != nil {
		return nil, nil, err
	}

	l.Debug("client configured",
		zap.String("rpcUrl", cfg.RPCURL),
		zap.String("registryProgram", cfg.RegistryProgramID),
		zap.String("feePayer", feePayer.PublicKey().String()),
	)
	return verifier.NewService(client, feePayer, cfg, l), client, nil
}

func runValidateSignature(c *cli.Context) error {
	svc, client, err := setup(c)
	if err != nil {
		return err
	}
	defer client.Close()

	validSigner, err := solana.PublicKeyFromBase58(c.String("valid-signer"))
	if err != nil {
		return fmt.Errorf("invalid valid-signer address: %w", err)
	}
	privateKey, err := decodePrivateKey(c.String("private-key"))
	if err != nil {
		return err
	}

	sig, err := svc.ValidateSignature(c.Context, validSigner, privateKey, []byte(c.String("message")))
	if err != nil {
		return err
	}
	fmt.Printf("Signature: %s\n", sig)
	return nil
}

func runCreateAndVerify(c *cli.Context) error {
	svc, client, err := setup(c)
	if err != nil {
		return err
	}
	defer client.Close()

	validSigner, err := solana.PublicKeyFromBase58(c.String("valid-signer"))
	if err != nil {
		return fmt.Errorf("invalid valid-signer address: %w", err)
	}
	privateKey, err := decodePrivateKey(c.String("private-key"))
	if err != nil {
		return err
	}

	sig, err := svc.CreateAndVerifyMessage(c.Context, validSigner, privateKey, payload.TrackData{
		UserID:  c.String("user-id"),
		TrackID: c.String("track-id"),
		Source:  c.String("source"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Signature: %s\n", sig)
	return nil
}

func decodePrivateKey(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	key, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	return key, nil
}
