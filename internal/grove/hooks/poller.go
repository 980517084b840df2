// Package hooks correlates server-raised notification entries with tasks.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
)

// Service is the slice of the grove server the poller consumes.
type Service interface {
	ListAllHooks() ([]api.HookEntry, error)
	DismissHook(projectID, taskID string) error
}

type hookKey struct {
	projectID string
	taskID    string
}

// Poller polls the server for notification entries on a fixed interval and
// keeps a local snapshot. The owning session starts and stops it; it is not
// ambient global state.
type Poller struct {
	svc      Service
	interval time.Duration

	mu      sync.RWMutex
	entries map[hookKey]api.HookEntry

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller creates a poller over svc. A non-positive interval falls back to
// 10 seconds.
func NewPoller(svc Service, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		svc:      svc,
		interval: interval,
		entries:  map[hookKey]api.HookEntry{},
	}
}

// Start begins polling in the background. The first poll happens immediately.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.poll()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll()
			}
		}
	}()
}

// Stop tears down the poll timer. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
			<-p.done
		}
	})
}

// Poll fetches the hook list once, synchronously. Exposed so callers can
// refresh on demand between timer ticks.
func (p *Poller) Poll() {
	p.poll()
}

func (p *Poller) poll() {
	entries, err := p.svc.ListAllHooks()
	if err != nil {
		slog.Debug("hook poll failed", "error", err)
		return
	}
	next := make(map[hookKey]api.HookEntry, len(entries))
	for _, e := range entries {
		next[hookKey{projectID: e.ProjectID, taskID: e.TaskID}] = e
	}
	p.mu.Lock()
	p.entries = next
	p.mu.Unlock()
}

// Lookup returns the active entry for a task, if any. At most one entry
// exists per task.
func (p *Poller) Lookup(taskID string) (api.HookEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for key, entry := range p.entries {
		if key.taskID == taskID {
			return entry, true
		}
	}
	return api.HookEntry{}, false
}

// Entries returns a snapshot of all active entries.
func (p *Poller) Entries() []api.HookEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]api.HookEntry, 0, len(p.entries))
	for _, entry := range p.entries {
		out = append(out, entry)
	}
	return out
}

// Dismiss removes the local entry and asks the server to dismiss it. The
// remote call runs in the background so callers never wait on the network; a
// remote failure is swallowed and the local state may diverge until the next
// poll.
func (p *Poller) Dismiss(projectID, taskID string) {
	key := hookKey{projectID: projectID, taskID: taskID}
	p.mu.Lock()
	_, had := p.entries[key]
	delete(p.entries, key)
	p.mu.Unlock()
	if !had {
		return
	}
	go func() {
		if err := p.svc.DismissHook(projectID, taskID); err != nil {
			slog.Warn("hook dismiss failed", "project", projectID, "task", taskID, "error", err)
		}
	}()
}
