// Package signer holds the wallet collaborators that sign transfers in
// process.
package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

var _ interfaces.Signer = (*KeySigner)(nil)

// Backend is the subset of ethclient.Client a KeySigner needs
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeySigner signs plain value transfers with a local private key and
// broadcasts them through one chain's node.
type KeySigner struct {
	chainID models.ChainID
	backend Backend
	key     *ecdsa.PrivateKey
	address common.Address
	logger  *zerolog.Logger
}

// ParseKey decodes a hex private key, with or without 0x
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signer private key: %w", err)
	}
	return key, nil
}

func NewKeySigner(chainID models.ChainID, backend Backend, key *ecdsa.PrivateKey, logger *zerolog.Logger) *KeySigner {
	return &KeySigner{
		chainID: chainID,
		backend: backend,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		logger:  logger,
	}
}

// DialKeySigner connects to a chain endpoint and returns a signer for it
func DialKeySigner(ctx context.Context, chainID models.ChainID, endpoint string, key *ecdsa.PrivateKey, logger *zerolog.Logger) (*KeySigner, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", chainID, err)
	}
	return NewKeySigner(chainID, client, key, logger), client, nil
}

// Address is the account the signer spends from
func (s *KeySigner) Address() common.Address {
	return s.address
}

// RequestTransfer signs and broadcasts one transfer. The sender must be the
// signer's own account.
func (s *KeySigner) RequestTransfer(ctx context.Context, req models.TransferRequest) (string, error) {
	if req.ChainID != s.chainID {
		return "", fmt.Errorf("%w: signer serves %s, transfer is on %s", models.ErrUnsupportedChain, s.chainID, req.ChainID)
	}
	if !common.IsHexAddress(req.From) || common.HexToAddress(req.From) != s.address {
		return "", fmt.Errorf("%w: signer holds %s, not %s", models.ErrSignerRejected, s.address.Hex(), req.From)
	}
	if !common.IsHexAddress(req.To) {
		return "", fmt.Errorf("%w: invalid recipient %q", models.ErrTransferFailed, req.To)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: transfer amount must be positive", models.ErrInvalidAmount)
	}
	to := common.HexToAddress(req.To)

	nonce, err := s.backend.PendingNonceAt(ctx, s.address)
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %w", models.ErrTransferFailed, err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: gas price: %w", models.ErrTransferFailed, err)
	}
	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.address, To: &to, Value: req.Amount})
	if err != nil {
		return "", fmt.Errorf("%w: gas estimate: %w", models.ErrTransferFailed, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    new(big.Int).Set(req.Amount),
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(int64(s.chainID))), s.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign: %w", models.ErrSignerRejected, err)
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrTransferFailed, err)
	}

	s.logger.Debug().
		Str("chain", s.chainID.String()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Str("txHash", signed.Hash().Hex()).
		Msg("Broadcast signed transfer")

	return signed.Hash().Hex(), nil
}
