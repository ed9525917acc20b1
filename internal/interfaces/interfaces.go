package interfaces

import (
	"context"

	"donation-widget/internal/models"
)

// Signer is the wallet collaborator that broadcasts a single transfer.
// Errors are final for the donation they belong to.
type Signer interface {
	RequestTransfer(ctx context.Context, req models.TransferRequest) (string, error)
}

// EventEmitter defines the interface for emitting events
type EventEmitter interface {
	EmitEvent(ctx context.Context, event models.TransferEvent) error
}

// TransferRecorder keeps a log of broadcast transfers
type TransferRecorder interface {
	SaveTransfer(ctx context.Context, event models.TransferEvent) error
}

// ProjectStore persists project configurations
type ProjectStore interface {
	SaveProject(ctx context.Context, project models.Project) error
	GetProject(ctx context.Context, id string) (models.Project, error)
}

// ChainProbe reports the head of one chain for readiness checks
type ChainProbe interface {
	GetChainID() models.ChainID
	GetBlockHead(ctx context.Context) (uint64, error)
}
