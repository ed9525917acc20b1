package models

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	MinRecipients = 1
	MaxRecipients = 5
	// TotalShares is the share sum a project must reach to be publishable
	TotalShares = 100
)

type ButtonStyle string

const (
	ButtonDefault ButtonStyle = "default"
	ButtonRounded ButtonStyle = "rounded"
	ButtonPill    ButtonStyle = "pill"
)

type WidgetSize string

const (
	SizeSmall  WidgetSize = "small"
	SizeMedium WidgetSize = "medium"
	SizeLarge  WidgetSize = "large"
)

// Recipient is a destination address with a relative share weight on one chain
type Recipient struct {
	Address string  `json:"address" yaml:"address"`
	ChainID ChainID `json:"chainId" yaml:"chainId"`
	Share   int     `json:"share" yaml:"share"`
}

// Theme holds widget presentation settings
type Theme struct {
	PrimaryColor string      `json:"primaryColor" yaml:"primaryColor"`
	ButtonStyle  ButtonStyle `json:"buttonStyle" yaml:"buttonStyle"`
	Size         WidgetSize  `json:"size" yaml:"size"`
	DarkMode     bool        `json:"darkMode" yaml:"darkMode"`
}

// DefaultTheme is applied to projects that do not carry one
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor: "#3B82F6",
		ButtonStyle:  ButtonDefault,
		Size:         SizeMedium,
	}
}

// Project is a donation target definition. Callers treat it as an immutable
// snapshot: edits produce a new value.
type Project struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string      `json:"image,omitempty" yaml:"image,omitempty"`
	Recipients  []Recipient `json:"recipients" yaml:"recipients"`
	Theme       Theme       `json:"theme" yaml:"theme"`
}

// WithDefaults returns a copy with an id and a complete theme
func (p Project) WithDefaults() Project {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	def := DefaultTheme()
	if p.Theme.PrimaryColor == "" {
		p.Theme.PrimaryColor = def.PrimaryColor
	}
	if p.Theme.ButtonStyle == "" {
		p.Theme.ButtonStyle = def.ButtonStyle
	}
	if p.Theme.Size == "" {
		p.Theme.Size = def.Size
	}
	p.Recipients = append([]Recipient(nil), p.Recipients...)
	return p
}

// RecipientsOn returns the chain-filtered subset in project order
func (p Project) RecipientsOn(chainID ChainID) []Recipient {
	return FilterByChain(p.Recipients, chainID)
}

func FilterByChain(recipients []Recipient, chainID ChainID) []Recipient {
	var filtered []Recipient
	for _, r := range recipients {
		if r.ChainID == chainID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// DonationIntent is one donation attempt; never persisted
type DonationIntent struct {
	Project Project
	ChainID ChainID
	// Amount is a decimal string in whole native-currency units
	Amount string
	From   string
}

// Allocation is one recipient's part of a split
type Allocation struct {
	Recipient Recipient
	// Index is the recipient's position in the project list
	Index     int
	SubAmount *big.Int
}

// SplitResult is the ordered outcome of splitting one donation
type SplitResult struct {
	ChainID     ChainID
	Total       *big.Int
	Allocations []Allocation
	// Remainder is the floor-division residual
	Remainder *big.Int
	// RemainderIndex is the allocation that received Remainder, -1 if none did
	RemainderIndex int
}

// Distributed sums the sub-amounts
func (s SplitResult) Distributed() *big.Int {
	sum := new(big.Int)
	for _, a := range s.Allocations {
		sum.Add(sum, a.SubAmount)
	}
	return sum
}

// Deficit is what the allocations leave undistributed
func (s SplitResult) Deficit() *big.Int {
	if s.Total == nil {
		return new(big.Int)
	}
	return new(big.Int).Sub(s.Total, s.Distributed())
}

// TransferRequest is handed to a wallet signer, one per recipient
type TransferRequest struct {
	From    string
	To      string
	Amount  *big.Int
	ChainID ChainID
}

// TransferEvent describes a broadcast transfer
type TransferEvent struct {
	ProjectID   string    `json:"projectId"`
	Chain       ChainID   `json:"chainId"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	AmountWei   string    `json:"amountWei"`
	Amount      string    `json:"amount"`
	Symbol      string    `json:"symbol"`
	TxHash      string    `json:"txHash"`
	Index       int       `json:"index"`
	Timestamp   time.Time `json:"timestamp"`
	ExplorerURL string    `json:"explorerUrl"`
}
