package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oforidesmond/pulse-pos/internal/pos"
	"github.com/oforidesmond/pulse-pos/internal/store"
)

const (
	// DefaultPageSize is how many products each pull page requests.
	DefaultPageSize = 500

	// DefaultPullDebounce skips a non-forced pull when the last
	// successful one finished more recently than this.
	DefaultPullDebounce = 5 * time.Minute

	// DefaultSyncInterval is the periodic full-sync cadence.
	DefaultSyncInterval = 15 * time.Minute
)

// CatalogReplaced is emitted after a successful catalog pull so
// dependent views can refresh.
type CatalogReplaced struct {
	LastSyncedAt time.Time
	TotalFetched int
}

// PullResult summarizes one catalog pull.
type PullResult struct {
	// Skipped is true when the debounce window suppressed the pull.
	Skipped bool
	// Fetched is how many valid products were installed.
	Fetched int
	// Discarded counts remote records dropped at validation.
	Discarded int
}

// PushResult summarizes one pending-sales push.
type PushResult struct {
	Synced int
	Failed int
}

// SyncResult reports a composed pull+push. The two directions are
// independent best-effort operations; a failure in one does not stop
// the other, and both errors are surfaced together.
type SyncResult struct {
	Pull    PullResult
	Push    PushResult
	PullErr error
	PushErr error
}

// Options tune an Engine. Zero values select the defaults above.
type Options struct {
	PageSize     int
	PullDebounce time.Duration
	SyncInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine reconciles the local store against the remote backend. All
// stateful work happens on the caller's goroutine or the single Run
// loop; the engine itself takes no locks beyond listener registration.
type Engine struct {
	store  *store.Store
	client *Client
	log    *zap.Logger

	pageSize     int
	pullDebounce time.Duration
	syncInterval time.Duration
	now          func() time.Time

	listeners []func(CatalogReplaced)

	syncCh   chan chan SyncResult
	pushCh   chan struct{}
	onlineCh chan bool
}

// NewEngine creates a sync engine over the given store and client.
// A nil logger defaults to zap.NewNop().
func NewEngine(st *store.Store, client *Client, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PullDebounce <= 0 {
		opts.PullDebounce = DefaultPullDebounce
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = DefaultSyncInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		store:        st,
		client:       client,
		log:          log,
		pageSize:     opts.PageSize,
		pullDebounce: opts.PullDebounce,
		syncInterval: opts.SyncInterval,
		now:          opts.Now,
		syncCh:       make(chan chan SyncResult, 1),
		pushCh:       make(chan struct{}, 1),
		onlineCh:     make(chan bool, 1),
	}
}

// Notify registers a listener for catalog-replace events. Must be
// called before Run starts.
func (e *Engine) Notify(fn func(CatalogReplaced)) {
	e.listeners = append(e.listeners, fn)
}

// PullProducts reconciles the local catalog from the backend.
//
// Unless forced, the pull is skipped when the last successful one
// completed inside the debounce window. Pages are fetched until the
// server signals the last page, returns a short page, or the metadata
// says everything has been seen. Invalid records (missing id or name,
// unusable price) are dropped at validation and never abort the pull;
// a failed page fetch aborts the whole pull with the previous catalog
// and last-sync timestamp untouched.
func (e *Engine) PullProducts(ctx context.Context, force bool) (PullResult, error) {
	if !force {
		last, ok, err := e.store.LastSyncedAt(ctx, store.FamilyProducts)
		if err != nil {
			return PullResult{}, storageErr("pull products", err)
		}
		if ok && e.now().Sub(last) < e.pullDebounce {
			e.log.Debug("catalog pull debounced", zap.Time("last_synced_at", last))
			return PullResult{Skipped: true}, nil
		}
	}

	var (
		valid     []pos.Product
		discarded int
	)
	for page := 1; ; page++ {
		fetched, err := e.client.FetchProductPage(ctx, page, e.pageSize)
		if err != nil {
			e.log.Warn("catalog pull aborted", zap.Int("page", page), zap.Error(err))
			return PullResult{}, err
		}

		for _, raw := range fetched.Raw {
			p, ok := raw.normalize()
			if !ok {
				discarded++
				continue
			}
			valid = append(valid, p)
		}

		if fetched.TotalPages > 0 && page >= fetched.TotalPages {
			break
		}
		if fetched.Total > 0 && len(valid)+discarded >= fetched.Total {
			break
		}
		if len(fetched.Raw) < e.pageSize {
			// Short or empty page means the server ran out.
			break
		}
	}

	if err := e.store.ReplaceProducts(ctx, valid); err != nil {
		return PullResult{}, storageErr("pull products", err)
	}

	syncedAt := e.now()
	if err := e.store.SetLastSyncedAt(ctx, store.FamilyProducts, syncedAt); err != nil {
		return PullResult{}, storageErr("pull products", err)
	}

	e.log.Info("catalog replaced",
		zap.Int("fetched", len(valid)),
		zap.Int("discarded", discarded),
	)
	e.emit(CatalogReplaced{LastSyncedAt: syncedAt, TotalFetched: len(valid)})

	return PullResult{Fetched: len(valid), Discarded: discarded}, nil
}

// PushSales submits pending sales oldest-first. Each accepted sale is
// marked synced immediately, so a failure later in the batch never
// causes an already-accepted sale to be resent. A per-record failure
// does not abort the batch; it is counted and the rest continue.
func (e *Engine) PushSales(ctx context.Context) (PushResult, error) {
	pending, err := e.store.ListSales(ctx, store.PendingSales)
	if err != nil {
		return PushResult{}, storageErr("push sales", err)
	}

	var result PushResult
	for _, sale := range pending {
		if err := e.client.SubmitSale(ctx, sale); err != nil {
			e.log.Warn("sale push failed", zap.String("sale_id", sale.ID), zap.Error(err))
			result.Failed++
			continue
		}
		if err := e.store.MarkSynced(ctx, sale.ID); err != nil {
			// The backend accepted it; losing the flag means one extra
			// idempotent resend next push.
			e.log.Error("mark synced failed", zap.String("sale_id", sale.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Synced++
	}

	if result.Synced > 0 {
		if err := e.store.SetLastSyncedAt(ctx, store.FamilySales, e.now()); err != nil {
			return result, storageErr("push sales", err)
		}
	}

	e.log.Info("sales push finished",
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// SyncAll composes a forced pull and a push as two independent
// best-effort operations.
func (e *Engine) SyncAll(ctx context.Context, force bool) SyncResult {
	var res SyncResult
	res.Pull, res.PullErr = e.PullProducts(ctx, force)
	res.Push, res.PushErr = e.PushSales(ctx)
	return res
}

// RequestSync asks the running loop for a full sync and returns a
// channel carrying the result. Best-effort: if a sync is already
// queued the request is coalesced into it.
func (e *Engine) RequestSync() <-chan SyncResult {
	ch := make(chan SyncResult, 1)
	select {
	case e.syncCh <- ch:
	default:
		close(ch)
	}
	return ch
}

// RequestPush asks the running loop to push pending sales, typically
// right after a sale completes. Coalesces when one is already queued.
func (e *Engine) RequestPush() {
	select {
	case e.pushCh <- struct{}{}:
	default:
	}
}

// SetOnline feeds a connectivity transition into the loop. Only the
// offline-to-online edge triggers a sync.
func (e *Engine) SetOnline(online bool) {
	select {
	case e.onlineCh <- online:
	default:
	}
}

// Run drives the engine until ctx is cancelled: an initial pull when
// the catalog is empty and the backend reachable, then the periodic
// cadence plus connectivity and manual triggers. Everything executes
// on this one goroutine.
func (e *Engine) Run(ctx context.Context) error {
	if n, err := e.store.CountProducts(ctx); err == nil && n == 0 && e.client.Ping(ctx) {
		if _, err := e.PullProducts(ctx, true); err != nil {
			e.log.Warn("initial catalog pull failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(e.syncInterval)
	defer ticker.Stop()

	online := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			e.SyncAll(ctx, false)

		case nowOnline := <-e.onlineCh:
			if nowOnline && !online {
				e.log.Info("connectivity restored, syncing")
				e.SyncAll(ctx, false)
			}
			online = nowOnline

		case <-e.pushCh:
			if _, err := e.PushSales(ctx); err != nil {
				e.log.Warn("push failed", zap.Error(err))
			}

		case replyCh := <-e.syncCh:
			replyCh <- e.SyncAll(ctx, true)
		}
	}
}

func (e *Engine) emit(event CatalogReplaced) {
	for _, fn := range e.listeners {
		fn(event)
	}
}
