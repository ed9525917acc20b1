// Package donation turns a donation intent into one transfer per recipient.
package donation

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"
	"donation-widget/internal/splitter"
	"donation-widget/internal/validation"

	"github.com/rs/zerolog"
)

// Transfer is one broadcast sub-transfer
type Transfer struct {
	Index     int
	To        string
	Amount    *big.Int
	TxHash    string
	Explorer  string
	Timestamp time.Time
}

// Receipt reports how far a donation got. Completed transfers are final even
// when a later one failed.
type Receipt struct {
	ProjectID string
	ChainID   models.ChainID
	Split     models.SplitResult
	Completed []Transfer
	// FailedIndex is the allocation index that failed, -1 when none did
	FailedIndex int
	// NotIssued counts allocations never handed to the signer
	NotIssued int
}

// Succeeded reports whether every allocation was broadcast
func (r *Receipt) Succeeded() bool {
	return r.FailedIndex < 0 && r.NotIssued == 0
}

type Service struct {
	Signer   interfaces.Signer
	Emitter  interfaces.EventEmitter
	Recorder interfaces.TransferRecorder
	Policy   splitter.RemainderPolicy
	Logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(signer interfaces.Signer, emitter interfaces.EventEmitter, recorder interfaces.TransferRecorder, logger *zerolog.Logger) *Service {
	return &Service{
		Signer:   signer,
		Emitter:  emitter,
		Recorder: recorder,
		Policy:   splitter.RemainderToLargestShare,
		Logger:   logger,
		now:      time.Now,
	}
}

// Preview computes the split without touching the signer
func (s *Service) Preview(intent models.DonationIntent) (models.SplitResult, error) {
	return splitter.SplitWithPolicy(s.Policy, intent.Amount, intent.ChainID, intent.Project.Recipients)
}

// Donate splits the intent and requests each sub-transfer in recipient order,
// waiting for each before the next. The first failure stops the sequence.
// Once started the sequence ignores cancellation of ctx.
func (s *Service) Donate(ctx context.Context, intent models.DonationIntent) (*Receipt, error) {
	split, err := s.Preview(intent)
	if err != nil {
		return nil, err
	}

	chain, ok := models.LookupChain(intent.ChainID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedChain, intent.ChainID)
	}
	if err := validation.ValidateAddress(intent.From); err != nil {
		return nil, fmt.Errorf("donor: %w", err)
	}
	for _, a := range split.Allocations {
		if err := validation.ValidateAddress(a.Recipient.Address); err != nil {
			return nil, fmt.Errorf("recipient %d: %w", a.Index, err)
		}
	}

	receipt := &Receipt{
		ProjectID:   intent.Project.ID,
		ChainID:     intent.ChainID,
		Split:       split,
		FailedIndex: -1,
	}

	var pending []models.Allocation
	for _, a := range split.Allocations {
		if a.SubAmount.Sign() > 0 {
			pending = append(pending, a)
		}
	}

	ctx = context.WithoutCancel(ctx)
	for i, a := range pending {
		hash, err := s.Signer.RequestTransfer(ctx, models.TransferRequest{
			From:    intent.From,
			To:      a.Recipient.Address,
			Amount:  new(big.Int).Set(a.SubAmount),
			ChainID: intent.ChainID,
		})
		if err != nil {
			receipt.FailedIndex = a.Index
			receipt.NotIssued = len(pending) - i - 1
			s.Logger.Error().
				Err(err).
				Str("projectId", intent.Project.ID).
				Str("chain", intent.ChainID.String()).
				Int("index", a.Index).
				Int("completed", len(receipt.Completed)).
				Int("notIssued", receipt.NotIssued).
				Msg("Transfer failed, stopping donation")
			return receipt, fmt.Errorf("transfer %d of %d to %s: %w", i+1, len(pending), a.Recipient.Address, err)
		}

		transfer := Transfer{
			Index:     a.Index,
			To:        a.Recipient.Address,
			Amount:    a.SubAmount,
			TxHash:    hash,
			Explorer:  chain.ExplorerTxURL(hash),
			Timestamp: s.now().UTC(),
		}
		receipt.Completed = append(receipt.Completed, transfer)
		s.publish(ctx, intent, chain, transfer)
	}

	s.Logger.Info().
		Str("projectId", intent.Project.ID).
		Str("chain", intent.ChainID.String()).
		Str("amount", intent.Amount).
		Int("transfers", len(receipt.Completed)).
		Msg("Donation completed")
	return receipt, nil
}

func (s *Service) publish(ctx context.Context, intent models.DonationIntent, chain models.Chain, t Transfer) {
	event := models.TransferEvent{
		ProjectID:   intent.Project.ID,
		Chain:       intent.ChainID,
		From:        intent.From,
		To:          t.To,
		AmountWei:   t.Amount.String(),
		Amount:      splitter.FormatAmount(t.Amount, chain.NativeCurrency.Decimals),
		Symbol:      chain.NativeCurrency.Symbol,
		TxHash:      t.TxHash,
		Index:       t.Index,
		Timestamp:   t.Timestamp,
		ExplorerURL: t.Explorer,
	}

	if s.Recorder != nil {
		if err := s.Recorder.SaveTransfer(ctx, event); err != nil {
			s.Logger.Error().Err(err).Str("txHash", t.TxHash).Msg("Failed to record transfer")
		}
	}
	if s.Emitter != nil {
		if err := s.Emitter.EmitEvent(ctx, event); err != nil {
			s.Logger.Error().Err(err).Str("txHash", t.TxHash).Msg("Failed to emit transfer event")
		}
	}
}
