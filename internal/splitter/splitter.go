// Package splitter divides a donation across the recipients of one chain in
// exact base-unit integers.
package splitter

import (
	"fmt"
	"math/big"
	"strings"

	"donation-widget/internal/models"
	"donation-widget/internal/validation"

	"github.com/shopspring/decimal"
)

// MaxAmountDigits bounds a parsed amount in base units, the width of a uint256
const MaxAmountDigits = 78

// RemainderPolicy decides who receives the floor-division residual
type RemainderPolicy int

const (
	// RemainderToLargestShare gives the residual to the recipient with the
	// largest share, the earliest one on ties. Sub-amounts sum to the total.
	RemainderToLargestShare RemainderPolicy = iota
	// RemainderUnassigned leaves the residual with the donor. Sub-amounts may
	// fall short of the total by less than the number of recipients.
	RemainderUnassigned
)

func (p RemainderPolicy) String() string {
	switch p {
	case RemainderToLargestShare:
		return "largest-share"
	case RemainderUnassigned:
		return "unassigned"
	}
	return fmt.Sprintf("policy-%d", int(p))
}

// ParsePolicy is the inverse of String; empty selects the default
func ParsePolicy(s string) (RemainderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "largest-share":
		return RemainderToLargestShare, nil
	case "unassigned":
		return RemainderUnassigned, nil
	}
	return 0, fmt.Errorf("unknown remainder policy %q", s)
}

// ParseAmount converts a decimal string of whole units into base units,
// truncating digits past the given number of decimals.
func ParseAmount(amount string, decimals int32) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: amount is empty", models.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a decimal number", models.ErrInvalidAmount, amount)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q is not positive", models.ErrInvalidAmount, amount)
	}

	// c*10^e has at most len(c)+e digits, so the bound is checked before any
	// power of ten is built.
	digits := int64(len(d.Coefficient().String())) + int64(d.Exponent()) + int64(decimals)
	if digits > MaxAmountDigits {
		return nil, fmt.Errorf("%w: %q exceeds %d base-unit digits", models.ErrInvalidAmount, amount, MaxAmountDigits)
	}
	if digits <= 0 {
		return nil, fmt.Errorf("%w: %q is below one base unit", models.ErrInvalidAmount, amount)
	}

	wei := d.Shift(decimals).BigInt()
	if err := validation.ValidateAmount(wei); err != nil {
		return nil, fmt.Errorf("%w: %q is below one base unit", models.ErrInvalidAmount, amount)
	}
	return wei, nil
}

// FormatAmount renders base units as a decimal string of whole units
func FormatAmount(wei *big.Int, decimals int32) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -decimals).String()
}

// Split divides amount between the recipients registered on chainID using
// RemainderToLargestShare.
func Split(amount string, chainID models.ChainID, recipients []models.Recipient) (models.SplitResult, error) {
	return SplitWithPolicy(RemainderToLargestShare, amount, chainID, recipients)
}

// SplitWithPolicy divides amount between the recipients registered on
// chainID. Each recipient gets floor(total*share/totalShares); the residual
// is handled by policy. The amount is checked before recipients are looked at.
func SplitWithPolicy(policy RemainderPolicy, amount string, chainID models.ChainID, recipients []models.Recipient) (models.SplitResult, error) {
	total, err := ParseAmount(amount, models.NativeDecimals)
	if err != nil {
		return models.SplitResult{}, err
	}
	return SplitBaseUnits(policy, total, chainID, recipients)
}

// SplitBaseUnits is SplitWithPolicy for an amount already in base units
func SplitBaseUnits(policy RemainderPolicy, total *big.Int, chainID models.ChainID, recipients []models.Recipient) (models.SplitResult, error) {
	if err := validation.ValidateAmount(total); err != nil {
		return models.SplitResult{}, err
	}

	var (
		allocations []models.Allocation
		shares      = new(big.Int)
	)
	for i, r := range recipients {
		if r.ChainID != chainID {
			continue
		}
		if r.Share < 0 || r.Share > models.TotalShares {
			return models.SplitResult{}, fmt.Errorf("%w: recipient %d share %d is outside 0..%d",
				models.ErrInvalidProject, i+1, r.Share, models.TotalShares)
		}
		shares.Add(shares, big.NewInt(int64(r.Share)))
		allocations = append(allocations, models.Allocation{Recipient: r, Index: i})
	}

	if len(allocations) == 0 {
		return models.SplitResult{}, fmt.Errorf("%w: %s (%d)", models.ErrNoRecipientsForChain, chainID, int64(chainID))
	}
	if shares.Sign() == 0 {
		return models.SplitResult{}, fmt.Errorf("%w: %s (%d) has only zero shares", models.ErrNoRecipientsForChain, chainID, int64(chainID))
	}

	distributed := new(big.Int)
	largest := 0
	for i := range allocations {
		sub := new(big.Int).Mul(total, big.NewInt(int64(allocations[i].Recipient.Share)))
		sub.Quo(sub, shares)
		allocations[i].SubAmount = sub
		distributed.Add(distributed, sub)
		if allocations[i].Recipient.Share > allocations[largest].Recipient.Share {
			largest = i
		}
	}

	result := models.SplitResult{
		ChainID:        chainID,
		Total:          new(big.Int).Set(total),
		Allocations:    allocations,
		Remainder:      new(big.Int).Sub(total, distributed),
		RemainderIndex: -1,
	}

	if policy == RemainderToLargestShare && result.Remainder.Sign() > 0 {
		allocations[largest].SubAmount.Add(allocations[largest].SubAmount, result.Remainder)
		result.RemainderIndex = largest
	}

	return result, nil
}
