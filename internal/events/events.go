package events

import (
	"context"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/logger"
	"donation-widget/internal/models"
)

var _ interfaces.EventEmitter = (*LogEmitter)(nil)

// LogEmitter logs every transfer and forwards it to the wrapped emitter
type LogEmitter struct {
	WrappedEmitter interfaces.EventEmitter
}

func (d *LogEmitter) EmitEvent(ctx context.Context, event models.TransferEvent) error {
	logger.GetLogger().Info().
		Str("projectId", event.ProjectID).
		Str("chain", event.Chain.String()).
		Str("from", event.From).
		Str("to", event.To).
		Str("amount", event.Amount).
		Str("symbol", event.Symbol).
		Str("txHash", event.TxHash).
		Int("index", event.Index).
		Time("timestamp", event.Timestamp).
		Msg("Transfer details")

	if event.ExplorerURL != "" {
		logger.GetLogger().Info().
			Str("chain", event.Chain.String()).
			Str("explorer", event.ExplorerURL).
			Msg("Explorer link")
	}

	if d.WrappedEmitter != nil {
		return d.WrappedEmitter.EmitEvent(ctx, event)
	}
	return nil
}
