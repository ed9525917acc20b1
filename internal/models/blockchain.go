package models

import (
	"fmt"
	"strings"
)

// ChainID is an EIP-155 chain identifier
type ChainID int64

func (c ChainID) String() string {
	if chain, ok := LookupChain(c); ok {
		return chain.Name
	}
	return fmt.Sprintf("chain-%d", int64(c))
}

const (
	Ethereum    ChainID = 1
	Optimism    ChainID = 10
	Polygon     ChainID = 137
	ZkSyncEra   ChainID = 324
	Base        ChainID = 8453
	Celo        ChainID = 42220
	ArbitrumOne ChainID = 42161
	Blast       ChainID = 81457
	Scroll      ChainID = 534352
)

// NativeDecimals is the base-unit scaling of every supported native currency
const NativeDecimals = 18

// NativeCurrency describes the coin a chain pays transfers in
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// Chain is an entry of the static chain registry
type Chain struct {
	ID                ChainID        `json:"id"`
	Name              string         `json:"name"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RpcURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
	IconURL           string         `json:"iconUrl"`
}

func ether() NativeCurrency {
	return NativeCurrency{Name: "Ethereum", Symbol: "ETH", Decimals: NativeDecimals}
}

// SupportedChains lists the networks a donation can be made on, in display order
var SupportedChains = []Chain{
	{
		ID:                Ethereum,
		Name:              "Ethereum",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://eth.llamarpc.com"},
		BlockExplorerURLs: []string{"https://etherscan.io"},
		IconURL:           "https://ethereum.org/static/6b935ac0e6194247347855dc3d328e83/13c43/eth-diamond-black.png",
	},
	{
		ID:                Optimism,
		Name:              "Optimism",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://mainnet.optimism.io"},
		BlockExplorerURLs: []string{"https://optimistic.etherscan.io"},
		IconURL:           "https://optimism.io/assets/images/metamask-fox.svg",
	},
	{
		ID:                Polygon,
		Name:              "Polygon",
		NativeCurrency:    NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: NativeDecimals},
		RpcURLs:           []string{"https://polygon-rpc.com"},
		BlockExplorerURLs: []string{"https://polygonscan.com"},
		IconURL:           "https://polygon.technology/favicon.ico",
	},
	{
		ID:                Base,
		Name:              "Base",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://mainnet.base.org"},
		BlockExplorerURLs: []string{"https://basescan.org"},
		IconURL:           "https://raw.githubusercontent.com/ethereum-optimism/brand-kit/main/assets/svg/Base-Chain_Blue.svg",
	},
	{
		ID:                ArbitrumOne,
		Name:              "Arbitrum One",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://arb1.arbitrum.io/rpc"},
		BlockExplorerURLs: []string{"https://arbiscan.io"},
		IconURL:           "https://arbitrum.io/favicon.ico",
	},
	{
		ID:                Scroll,
		Name:              "Scroll",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://rpc.scroll.io"},
		BlockExplorerURLs: []string{"https://scrollscan.com"},
		IconURL:           "https://scroll.io/favicon.ico",
	},
	{
		ID:                Celo,
		Name:              "Celo",
		NativeCurrency:    NativeCurrency{Name: "CELO", Symbol: "CELO", Decimals: NativeDecimals},
		RpcURLs:           []string{"https://forno.celo.org"},
		BlockExplorerURLs: []string{"https://celoscan.io"},
		IconURL:           "https://celo.org/favicon.ico",
	},
	{
		ID:                ZkSyncEra,
		Name:              "zkSync Era",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://mainnet.era.zksync.io"},
		BlockExplorerURLs: []string{"https://explorer.zksync.io"},
		IconURL:           "https://zksync.io/favicon.ico",
	},
	{
		ID:                Blast,
		Name:              "Blast",
		NativeCurrency:    ether(),
		RpcURLs:           []string{"https://rpc.blast.io"},
		BlockExplorerURLs: []string{"https://blastscan.io"},
		IconURL:           "https://blast.io/favicon.ico",
	},
}

// LookupChain finds a chain in the registry
func LookupChain(id ChainID) (Chain, bool) {
	for _, chain := range SupportedChains {
		if chain.ID == id {
			return chain, true
		}
	}
	return Chain{}, false
}

// IsSupportedChain reports whether id is in the registry
func IsSupportedChain(id ChainID) bool {
	_, ok := LookupChain(id)
	return ok
}

func (c Chain) explorerBase() string {
	if len(c.BlockExplorerURLs) == 0 {
		return ""
	}
	return strings.TrimRight(c.BlockExplorerURLs[0], "/")
}

// ExplorerTxURL returns the explorer page of a transaction, empty if the chain has no explorer
func (c Chain) ExplorerTxURL(txHash string) string {
	base := c.explorerBase()
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", base, txHash)
}

func (c Chain) ExplorerAddressURL(address string) string {
	base := c.explorerBase()
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s", base, address)
}
