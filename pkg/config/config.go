package config

import (
	"github.com/gagliardetto/solana-go"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the attestation client configuration
const (
	EnvAttestRPCURL            = "ATTEST_RPC_URL"
	EnvAttestWSURL             = "ATTEST_WS_URL"
	EnvAttestRegistryProgramID = "ATTEST_REGISTRY_PROGRAM_ID"
	EnvAttestTrackProgramID    = "ATTEST_TRACK_PROGRAM_ID"
	EnvAttestFeePayerKeypair   = "ATTEST_FEE_PAYER_KEYPAIR"
	EnvAttestDebug             = "ATTEST_DEBUG"
)

// ClientConfig represents the complete configuration for one attestation
// client process. All fields are read-only after construction.
type ClientConfig struct {
	// Ledger endpoints
	RPCURL string `json:"rpc_url"` // JSON-RPC endpoint
	WSURL  string `json:"ws_url"`  // websocket endpoint for confirmations

	// Program addresses (base58)
	RegistryProgramID string `json:"registry_program_id"` // signer-registry program
	TrackProgramID    string `json:"track_program_id"`    // track-listen program

	// FeePayerKeypairPath points at a solana keygen file. Key material is
	// supplied externally and never embedded in source.
	FeePayerKeypairPath string `json:"fee_payer_keypair_path"`

	// Operational settings
	Debug bool `json:"debug"`
}

// Validate checks the configuration and aggregates all problems found.
func (c *ClientConfig) Validate() error {
	var allErrors field.ErrorList
	root := field.NewPath("config")

	if c.RPCURL == "" {
		allErrors = append(allErrors, field.Required(root.Child("rpcUrl"), "JSON-RPC endpoint is required"))
	}
	if c.WSURL == "" {
		allErrors = append(allErrors, field.Required(root.Child("wsUrl"), "websocket endpoint is required"))
	}
	if c.FeePayerKeypairPath == "" {
		allErrors = append(allErrors, field.Required(root.Child("feePayerKeypairPath"), "fee payer keypair file is required"))
	}

	if c.RegistryProgramID == "" {
		allErrors = append(allErrors, field.Required(root.Child("registryProgramId"), "signer-registry program address is required"))
	} else if _, err := solana.PublicKeyFromBase58(c.RegistryProgramID); err != nil {
		allErrors = append(allErrors, field.Invalid(root.Child("registryProgramId"), c.RegistryProgramID, err.Error()))
	}

	if c.TrackProgramID == "" {
		allErrors = append(allErrors, field.Required(root.Child("trackProgramId"), "track-listen program address is required"))
	} else if _, err := solana.PublicKeyFromBase58(c.TrackProgramID); err != nil {
		allErrors = append(allErrors, field.Invalid(root.Child("trackProgramId"), c.TrackProgramID, err.Error()))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// RegistryProgram returns the parsed signer-registry program key. Call
// Validate first.
func (c *ClientConfig) RegistryProgram() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.RegistryProgramID)
}

// TrackProgram returns the parsed track-listen program key. Call Validate
// first.
func (c *ClientConfig) TrackProgram() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.TrackProgramID)
}
