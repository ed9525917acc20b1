package signer

import (
	"context"
	"fmt"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"
)

var _ interfaces.Signer = (*Router)(nil)

// Router dispatches transfers to the signer registered for their chain
type Router struct {
	signers map[models.ChainID]interfaces.Signer
}

func NewRouter() *Router {
	return &Router{signers: make(map[models.ChainID]interfaces.Signer)}
}

// Register sets the signer for a chain. Not safe for use once transfers flow.
func (r *Router) Register(chainID models.ChainID, s interfaces.Signer) {
	r.signers[chainID] = s
}

// Chains lists the chains that have a signer
func (r *Router) Chains() []models.ChainID {
	var out []models.ChainID
	for _, chain := range models.SupportedChains {
		if _, ok := r.signers[chain.ID]; ok {
			out = append(out, chain.ID)
		}
	}
	return out
}

func (r *Router) RequestTransfer(ctx context.Context, req models.TransferRequest) (string, error) {
	s, ok := r.signers[req.ChainID]
	if !ok {
		return "", fmt.Errorf("%w: no signer for %s", models.ErrUnsupportedChain, req.ChainID)
	}
	return s.RequestTransfer(ctx, req)
}
