package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"
)

var (
	_ interfaces.ProjectStore     = Store{}
	_ interfaces.TransferRecorder = Store{}
)

// Transfer represents a recorded transfer in the database
type Transfer struct {
	ID          int64          `json:"id"`
	ProjectID   string         `json:"project_id"`
	ChainID     models.ChainID `json:"chain_id"`
	TxHash      string         `json:"tx_hash"`
	FromAddress string         `json:"from_address"`
	ToAddress   string         `json:"to_address"`
	AmountWei   string         `json:"amount_wei"`
	Amount      string         `json:"amount"`
	Symbol      string         `json:"symbol"`
	Index       int            `json:"index"`
	Timestamp   time.Time      `json:"timestamp"`
	ExplorerURL string         `json:"explorer_url"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SaveProject inserts or replaces a project
func SaveProject(ctx context.Context, project models.Project) error {
	recipients, err := json.Marshal(project.Recipients)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}
	theme, err := json.Marshal(project.Theme)
	if err != nil {
		return fmt.Errorf("failed to encode theme: %w", err)
	}

	_, err = DB.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, image, recipients, theme)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			recipients = EXCLUDED.recipients,
			theme = EXCLUDED.theme,
			updated_at = NOW()
	`, project.ID, project.Name, project.Description, project.Image, string(recipients), string(theme))
	return err
}

// GetProject retrieves a project by ID
func GetProject(ctx context.Context, id string) (models.Project, error) {
	var (
		project          models.Project
		recipients, theme []byte
	)
	err := DB.QueryRowContext(ctx, `
		SELECT id, name, description, image, recipients, theme FROM projects WHERE id = $1
	`, id).Scan(&project.ID, &project.Name, &project.Description, &project.Image, &recipients, &theme)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}
	if err != nil {
		return models.Project{}, err
	}

	if err := json.Unmarshal(recipients, &project.Recipients); err != nil {
		return models.Project{}, fmt.Errorf("failed to decode recipients of %s: %w", id, err)
	}
	if err := json.Unmarshal(theme, &project.Theme); err != nil {
		return models.Project{}, fmt.Errorf("failed to decode theme of %s: %w", id, err)
	}
	return project, nil
}

// SaveTransfer saves a broadcast transfer to the database
func SaveTransfer(ctx context.Context, event models.TransferEvent) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO transfers (project_id, chain_id, tx_hash, from_address, to_address, amount_wei, amount, symbol, recipient_index, timestamp, explorer_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (chain_id, tx_hash) DO NOTHING
	`, event.ProjectID, int64(event.Chain), event.TxHash, event.From, event.To, event.AmountWei, event.Amount, event.Symbol, event.Index, event.Timestamp, event.ExplorerURL)
	return err
}

// ListTransfers retrieves the transfers of a project, newest first
func ListTransfers(ctx context.Context, projectID string, limit, offset int) ([]Transfer, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, project_id, chain_id, tx_hash, from_address, to_address, amount_wei, amount, symbol, recipient_index, timestamp, explorer_url, created_at
		FROM transfers
		WHERE project_id = $1
		ORDER BY timestamp DESC, recipient_index ASC
		LIMIT $2 OFFSET $3
	`, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var (
			t       Transfer
			chainID int64
		)
		err := rows.Scan(&t.ID, &t.ProjectID, &chainID, &t.TxHash, &t.FromAddress, &t.ToAddress, &t.AmountWei, &t.Amount, &t.Symbol, &t.Index, &t.Timestamp, &t.ExplorerURL, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		t.ChainID = models.ChainID(chainID)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// Store exposes the package functions through the service interfaces
type Store struct{}

func (Store) SaveProject(ctx context.Context, project models.Project) error {
	return SaveProject(ctx, project)
}

func (Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	return GetProject(ctx, id)
}

func (Store) SaveTransfer(ctx context.Context, event models.TransferEvent) error {
	return SaveTransfer(ctx, event)
}

func (Store) ListTransfers(ctx context.Context, projectID string, limit, offset int) ([]Transfer, error) {
	return ListTransfers(ctx, projectID, limit, offset)
}
