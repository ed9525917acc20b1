package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/logger"
)

type ChainStatus struct {
	Name      string    `json:"name"`
	LastBlock uint64    `json:"last_block"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker tracks readiness and the last head seen on each probed chain
type Checker struct {
	interval time.Duration
	ready    atomic.Bool
	probes   atomic.Int32

	mu       sync.RWMutex
	statuses map[string]*ChainStatus
	wg       sync.WaitGroup
}

func NewChecker(interval time.Duration) *Checker {
	return &Checker{
		interval: interval,
		statuses: make(map[string]*ChainStatus),
	}
}

func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

func (c *Checker) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ReadinessHandler reports ready once SetReady(true) was called and, if any
// probes are registered, at least one chain answered.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready.Load() || (c.probes.Load() > 0 && len(c.statuses) == 0) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Not Ready"))
		return
	}

	response := make(map[string]interface{})
	response["status"] = "Ready"
	response["chains"] = c.statuses

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// RegisterProbe polls the probe's block head until ctx ends
func (c *Checker) RegisterProbe(ctx context.Context, probe interfaces.ChainProbe) {
	c.probes.Add(1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			c.check(ctx, probe)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Wait blocks until every probe goroutine has exited
func (c *Checker) Wait() {
	c.wg.Wait()
}

// Statuses returns a snapshot of the last seen heads
func (c *Checker) Statuses() map[string]ChainStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]ChainStatus, len(c.statuses))
	for name, s := range c.statuses {
		out[name] = *s
	}
	return out
}

func (c *Checker) check(ctx context.Context, probe interfaces.ChainProbe) {
	head, err := probe.GetBlockHead(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.GetLogger().Error().
				Err(err).
				Str("chain", probe.GetChainID().String()).
				Msg("Error getting latest block")
		}
		return
	}

	name := probe.GetChainID().String()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[name] = &ChainStatus{
		Name:      name,
		LastBlock: head,
		CheckedAt: time.Now().UTC(),
	}
}
