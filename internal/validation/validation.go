package validation

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"donation-widget/internal/models"
)

var (
	addressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	txHashRegex  = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	urlRegex     = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// IsAddress reports whether address is 0x followed by 40 hex digits, any case
func IsAddress(address string) bool {
	return addressRegex.MatchString(address)
}

// ValidateAddress validates an EVM address format
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("%w: address cannot be empty", models.ErrAddressFormat)
	}
	if !IsAddress(address) {
		return fmt.Errorf("%w: %q", models.ErrAddressFormat, address)
	}
	return nil
}

// ValidateAmount validates a base-unit amount is positive
func ValidateAmount(amount *big.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: amount cannot be nil", models.ErrInvalidAmount)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", models.ErrInvalidAmount)
	}
	return nil
}

// ValidateTxHash validates transaction hash format
func ValidateTxHash(txHash string) error {
	if txHash == "" {
		return errors.New("transaction hash cannot be empty")
	}
	if len(txHash) != 66 || !txHashRegex.MatchString(txHash) {
		return errors.New("invalid transaction hash")
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string) error {
	if url == "" {
		return errors.New("URL cannot be empty")
	}
	if !urlRegex.MatchString(url) {
		return errors.New("invalid URL format")
	}
	return nil
}
