package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"
	"donation-widget/internal/validation"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// codeUserRejected is the EIP-1193 "user rejected the request" error code
const codeUserRejected = 4001

var _ interfaces.Signer = (*WalletSigner)(nil)

// WalletSigner sends eth_sendTransaction to an endpoint that manages the
// sender's keys, such as a wallet bridge or a node with unlocked accounts.
type WalletSigner struct {
	client *Client
}

func NewWalletSigner(client *Client) *WalletSigner {
	return &WalletSigner{client: client}
}

// RequestTransfer broadcasts one value transfer. It is never retried.
func (w *WalletSigner) RequestTransfer(ctx context.Context, req models.TransferRequest) (string, error) {
	if req.ChainID != w.client.ChainID {
		return "", fmt.Errorf("%w: signer serves %s, transfer is on %s", models.ErrUnsupportedChain, w.client.ChainID, req.ChainID)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: transfer amount must be positive", models.ErrInvalidAmount)
	}

	args := models.SendTransactionArgs{
		From:  req.From,
		To:    req.To,
		Value: hexutil.EncodeBig(req.Amount),
	}

	result, err := w.client.CallOnce(ctx, "eth_sendTransaction", []interface{}{args})
	if err != nil {
		return "", classify(err)
	}

	var hash string
	if err := json.Unmarshal(result.Result, &hash); err != nil {
		return "", fmt.Errorf("%w: unexpected eth_sendTransaction result: %v", models.ErrTransferFailed, err)
	}
	if err := validation.ValidateTxHash(hash); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}
	return hash, nil
}

func classify(err error) error {
	var callErr *CallError
	if errors.As(err, &callErr) {
		msg := strings.ToLower(callErr.Message)
		if callErr.Code == codeUserRejected || strings.Contains(msg, "rejected") || strings.Contains(msg, "denied") {
			return fmt.Errorf("%w: %s", models.ErrSignerRejected, callErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", models.ErrTransferFailed, err)
}
