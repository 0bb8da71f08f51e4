// Package notify keeps a client-side view of the unread notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/diewo77/go-stages/internal/models"
)

// DefaultRefreshInterval is the reload period of Run.
const DefaultRefreshInterval = 60 * time.Second

// Source is the source of truth for notifications, usually the HTTP client.
type Source interface {
	ListUnread(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, read bool) error
}

// Deduplicator holds the unread set keyed by notification id. Marking an item
// read removes it locally before the remote call; if the call fails the whole
// set is thrown away and reloaded.
type Deduplicator struct {
	src      Source
	interval time.Duration
	log      *slog.Logger

	mu    sync.Mutex
	items map[uint]models.Notification
	// pending holds ids removed locally whose remote update has not completed.
	pending map[uint]bool
	// removals counts local removals; a reload that started before the last
	// removal must not re-add the removed id.
	removals uint64
	removed  map[uint]uint64
	onChange func([]models.Notification)
}

type Option func(*Deduplicator)

// WithInterval overrides the refresh period.
func WithInterval(d time.Duration) Option {
	return func(dd *Deduplicator) {
		if d > 0 {
			dd.interval = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(dd *Deduplicator) { dd.log = l }
}

// OnChange registers a callback receiving the unread list after every change.
func OnChange(fn func([]models.Notification)) Option {
	return func(dd *Deduplicator) { dd.onChange = fn }
}

func NewDeduplicator(src Source, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		src:      src,
		interval: DefaultRefreshInterval,
		log:      slog.Default(),
		items:    map[uint]models.Notification{},
		pending:  map[uint]bool{},
		removed:  map[uint]uint64{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Unread returns the current unread set ordered by id.
func (d *Deduplicator) Unread() []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Deduplicator) snapshotLocked() []models.Notification {
	out := make([]models.Notification, 0, len(d.items))
	for _, n := range d.items {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reload replaces the unread set with the source's.
func (d *Deduplicator) Reload(ctx context.Context) error {
	d.mu.Lock()
	started := d.removals
	d.mu.Unlock()

	list, err := d.src.ListUnread(ctx)
	if err != nil {
		return fmt.Errorf("reload notifications: %w", err)
	}

	d.mu.Lock()
	items := make(map[uint]models.Notification, len(list))
	for _, n := range list {
		if n.Lu || d.pending[n.ID] {
			continue
		}
		// Removed after this reload started: the source may not know yet.
		if seq, ok := d.removed[n.ID]; ok && seq > started {
			continue
		}
		items[n.ID] = n
	}
	d.items = items
	for id, seq := range d.removed {
		if seq <= started && !d.pending[id] {
			delete(d.removed, id)
		}
	}
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.changed(snap)
	return nil
}

// MarkAsRead removes id from the unread set, then tells the source. The
// source is told even when id is not loaded yet, so a reload in flight
// cannot bring it back unread. On failure the set is discarded and
// reloaded, and the remote error returned.
func (d *Deduplicator) MarkAsRead(ctx context.Context, id uint) error {
	d.mu.Lock()
	_, loaded := d.items[id]
	delete(d.items, id)
	d.pending[id] = true
	d.removals++
	d.removed[id] = d.removals
	snap := d.snapshotLocked()
	d.mu.Unlock()
	if loaded {
		d.changed(snap)
	}

	err := d.src.MarkRead(ctx, id, true)

	d.mu.Lock()
	delete(d.pending, id)
	if err != nil {
		delete(d.removed, id)
		d.items = map[uint]models.Notification{}
	}
	d.mu.Unlock()
	if err == nil {
		return nil
	}

	d.log.Warn("mark notification read failed, reloading", "notification", id, "error", err)
	if rerr := d.Reload(ctx); rerr != nil {
		d.log.Error("reload after failed mark read", "error", rerr)
	}
	return err
}

// Run reloads immediately, then every interval until ctx is done.
func (d *Deduplicator) Run(ctx context.Context) error {
	if err := d.Reload(ctx); err != nil && ctx.Err() == nil {
		d.log.Warn("initial notification load failed", "error", err)
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Reload(ctx); err != nil && ctx.Err() == nil {
				d.log.Warn("notification refresh failed", "error", err)
			}
		}
	}
}

func (d *Deduplicator) changed(snap []models.Notification) {
	if d.onChange != nil {
		d.onChange(snap)
	}
}
