package models

import "errors"

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNoRecipientsForChain = errors.New("no recipients for chain")
	ErrAddressFormat        = errors.New("invalid address format")
	ErrShareSumMismatch     = errors.New("shares must total 100")
	ErrInvalidProject       = errors.New("invalid project")
	ErrSignerRejected       = errors.New("signer rejected transfer")
	ErrTransferFailed       = errors.New("transfer failed")
	ErrUnsupportedChain     = errors.New("unsupported chain")
	ErrProjectNotFound      = errors.New("project not found")
	ErrUnknownEmbedKind     = errors.New("unknown embed kind")
)
