package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"
)

var (
	_ interfaces.ProjectStore     = (*MemoryStore)(nil)
	_ interfaces.TransferRecorder = (*MemoryStore)(nil)
)

// MemoryStore keeps projects and transfers in process when no database is
// configured. Contents are lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	projects  map[string]models.Project
	transfers []Transfer
	seen      map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]models.Project),
		seen:     make(map[string]struct{}),
	}
}

func (m *MemoryStore) SaveProject(_ context.Context, project models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	project.Recipients = append([]models.Recipient(nil), project.Recipients...)
	m.projects[project.ID] = project
	return nil
}

func (m *MemoryStore) GetProject(_ context.Context, id string) (models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	if !ok {
		return models.Project{}, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}
	project.Recipients = append([]models.Recipient(nil), project.Recipients...)
	return project, nil
}

func (m *MemoryStore) SaveTransfer(_ context.Context, event models.TransferEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%d/%s", event.Chain, event.TxHash)
	if _, dup := m.seen[key]; dup {
		return nil
	}
	m.seen[key] = struct{}{}

	m.transfers = append(m.transfers, Transfer{
		ID:          int64(len(m.transfers) + 1),
		ProjectID:   event.ProjectID,
		ChainID:     event.Chain,
		TxHash:      event.TxHash,
		FromAddress: event.From,
		ToAddress:   event.To,
		AmountWei:   event.AmountWei,
		Amount:      event.Amount,
		Symbol:      event.Symbol,
		Index:       event.Index,
		Timestamp:   event.Timestamp,
		ExplorerURL: event.ExplorerURL,
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// ListTransfers mirrors the SQL ordering: newest first, then recipient order
func (m *MemoryStore) ListTransfers(_ context.Context, projectID string, limit, offset int) ([]Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Transfer
	for _, t := range m.transfers {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Index < out[j].Index
	})

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
