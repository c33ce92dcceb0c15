// Package sync polls the backend for notifications and the unread count
// on a fixed interval, standing in for a push channel. The poller runs
// only while a session is authenticated and a consuming view is mounted;
// it stops on unmount and on any session transition away from
// authenticated.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/query"
)

// fetchTimeout is the maximum time allowed for a single poll round.
const fetchTimeout = 30 * time.Second

// ResultMsg is a tea.Msg sent when a poll round completes.
type ResultMsg struct {
	Notifications model.Page[model.Notification]
	Unread        int
	Err           error
	AuthFailed    bool
}

// Poller drives periodic notification refreshes.
type Poller struct {
	queries  *query.Queries
	interval time.Duration
	resultCh chan ResultMsg
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool
}

// New creates a poller over the given query bindings. A non-positive
// interval falls back to 30 seconds.
func New(q *query.Queries, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		queries:  q,
		interval: interval,
		resultCh: make(chan ResultMsg, 16),
	}
}

// Start launches the polling goroutine and returns a command that waits
// for the first result. Starting an already-running poller is a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go p.loop(stopCh)

	return p.waitForResult()
}

// Stop halts polling. The poller may be started again later (e.g. after
// the next login).
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// RefreshNow triggers an immediate poll round outside the interval.
func (p *Poller) RefreshNow() tea.Cmd {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	if running {
		go p.poll()
	}
	return nil
}

// WaitForNextResult returns a command that waits for the next poll
// result. Call after handling a ResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

// loop runs poll rounds until stopped.
func (p *Poller) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch immediately so the UI is not blank for one interval.
	p.poll()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll marks the notification entries stale and refetches them, so each
// tick hits the backend instead of the fresh cache.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	p.queries.Cache().Invalidate(cache.ByResource(
		cache.ResourceNotifications,
		cache.ResourceUnreadCount,
	))

	notifications, err := p.queries.Notifications(ctx, model.NotificationFilters{})
	if err != nil {
		p.sendResult(ResultMsg{Err: err, AuthFailed: api.IsAuthError(err)})
		return
	}

	unread, err := p.queries.UnreadCount(ctx)
	if err != nil {
		p.sendResult(ResultMsg{Err: err, AuthFailed: api.IsAuthError(err)})
		return
	}

	p.sendResult(ResultMsg{
		Notifications: notifications,
		Unread:        unread.Count,
	})
}

// sendResult delivers a result without blocking the poll goroutine.
func (p *Poller) sendResult(msg ResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the UI is not draining; the next tick supersedes it.
	}
}

// waitForResult returns a command that blocks on the next result. The
// command unblocks with no message when the poller is stopped, so a wait
// issued just before Stop does not strand its goroutine.
func (p *Poller) waitForResult() tea.Cmd {
	p.mu.Lock()
	stopCh := p.stopCh
	p.mu.Unlock()

	return func() tea.Msg {
		if stopCh == nil {
			return nil
		}
		select {
		case result := <-p.resultCh:
			return result
		case <-stopCh:
			return nil
		}
	}
}
