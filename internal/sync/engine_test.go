package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oforidesmond/pulse-pos/internal/pos"
	"github.com/oforidesmond/pulse-pos/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestEngine wires an engine against an httptest backend serving
// /products and /sales.
func newTestEngine(t *testing.T, handler http.Handler, opts Options) (*Engine, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st := openTestStore(t)
	client := NewClient(srv.URL+"/products", srv.URL+"/sales", 5*time.Second)
	return NewEngine(st, client, zaptest.NewLogger(t), opts), st
}

// catalogHandler serves a fixed product list in envelope form, split
// into pages of the requested size.
func catalogHandler(products []map[string]any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = len(products)
		}

		totalPages := (len(products) + size - 1) / size
		if totalPages < 1 {
			totalPages = 1
		}
		start := (page - 1) * size
		end := start + size
		if start > len(products) {
			start = len(products)
		}
		if end > len(products) {
			end = len(products)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"data":       products[start:end],
			"totalPages": totalPages,
			"total":      len(products),
		})
	})
}

func remoteProduct(id, name string, price float64) map[string]any {
	return map[string]any{"id": id, "name": name, "sellingPrice": price}
}

func TestPullProducts_ReplacesCatalog(t *testing.T) {
	e, st := newTestEngine(t, catalogHandler([]map[string]any{
		remoteProduct("p1", "Milk", 5),
		remoteProduct("p2", "Rice", 60),
	}), Options{})
	ctx := context.Background()

	// Seed a stale catalog that the pull must discard.
	require.NoError(t, st.ReplaceProducts(ctx, []pos.Product{{ID: "old", Name: "Old", SellingPrice: 1}}))

	res, err := e.PullProducts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 0, res.Discarded)

	n, err := st.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = st.FindProductByCode(ctx, "old")
	assert.Error(t, err, "stale product must be gone")

	_, ok, err := st.LastSyncedAt(ctx, store.FamilyProducts)
	require.NoError(t, err)
	assert.True(t, ok, "last-sync timestamp must be recorded")
}

func TestPullProducts_Paginates(t *testing.T) {
	var products []map[string]any
	for i := 0; i < 5; i++ {
		products = append(products, remoteProduct(fmt.Sprintf("p%d", i), fmt.Sprintf("Product %d", i), float64(i+1)))
	}
	e, st := newTestEngine(t, catalogHandler(products), Options{PageSize: 2})

	res, err := e.PullProducts(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Fetched)

	n, err := st.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestPullProducts_DiscardsInvalidRecords(t *testing.T) {
	e, st := newTestEngine(t, catalogHandler([]map[string]any{
		remoteProduct("p1", "Milk", 5),
		{"name": "No ID", "price": 1},
		{"id": "p3", "price": 2},
		{"id": "p4", "name": "No Price"},
	}), Options{})

	res, err := e.PullProducts(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fetched)
	assert.Equal(t, 3, res.Discarded)

	n, err := st.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPullProducts_AbortsOnPageFailure(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"data":       []map[string]any{remoteProduct("n1", "New", 1)},
				"totalPages": 2,
			})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	e, st := newTestEngine(t, handler, Options{})
	ctx := context.Background()

	require.NoError(t, st.ReplaceProducts(ctx, []pos.Product{{ID: "keep", Name: "Keep", SellingPrice: 1}}))

	_, err := e.PullProducts(ctx, true)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))

	// The previous catalog and the absent last-sync timestamp are both
	// untouched.
	p, err := st.FindProductByCode(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "Keep", p.Name)
	_, ok, err := st.LastSyncedAt(ctx, store.FamilyProducts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPullProducts_Debounce(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	e, st := newTestEngine(t, catalogHandler([]map[string]any{
		remoteProduct("p1", "Milk", 5),
	}), Options{Now: func() time.Time { return now }})
	ctx := context.Background()

	// A pull finished two minutes ago: non-forced pulls are skipped,
	// forced pulls go through.
	require.NoError(t, st.SetLastSyncedAt(ctx, store.FamilyProducts, now.Add(-2*time.Minute)))

	res, err := e.PullProducts(ctx, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = e.PullProducts(ctx, true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 1, res.Fetched)

	// Outside the window the non-forced pull runs again.
	require.NoError(t, st.SetLastSyncedAt(ctx, store.FamilyProducts, now.Add(-6*time.Minute)))
	res, err = e.PullProducts(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
}

func TestPullProducts_EmitsNotification(t *testing.T) {
	e, _ := newTestEngine(t, catalogHandler([]map[string]any{
		remoteProduct("p1", "Milk", 5),
		remoteProduct("p2", "Rice", 60),
	}), Options{})

	var events []CatalogReplaced
	e.Notify(func(ev CatalogReplaced) { events = append(events, ev) })

	_, err := e.PullProducts(context.Background(), true)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].TotalFetched)
	assert.False(t, events[0].LastSyncedAt.IsZero())
}

// salesRecorder captures pushed sales and optionally fails chosen ids.
type salesRecorder struct {
	mu       sync.Mutex
	received []pos.Sale
	failIDs  map[string]bool
}

func (r *salesRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/sales" {
			http.NotFound(w, req)
			return
		}
		var sale pos.Sale
		if err := json.NewDecoder(req.Body).Decode(&sale); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.failIDs[sale.ID] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.received = append(r.received, sale)
		w.WriteHeader(http.StatusCreated)
	})
}

func (r *salesRecorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.received))
	for i, s := range r.received {
		out[i] = s.ID
	}
	return out
}

func pendingSale(id string, createdAt time.Time) pos.Sale {
	return pos.Sale{
		ID:            id,
		ReceiptNumber: "R-" + id,
		CreatedAt:     createdAt,
		Subtotal:      10,
		TotalAmount:   10,
		AmountPaid:    10,
		PaymentMethod: pos.PaymentCash,
		Items:         []pos.SaleItem{{ProductID: "p1", Name: "Milk", Price: 5, Quantity: 2}},
	}
}

func TestPushSales_MarksEachSynced(t *testing.T) {
	rec := &salesRecorder{}
	e, st := newTestEngine(t, rec.handler(), Options{})
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, st.UpsertSale(ctx, pendingSale(id, base.Add(time.Duration(i)*time.Minute))))
	}

	res, err := e.PushSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushResult{Synced: 3, Failed: 0}, res)

	// Oldest first.
	assert.Equal(t, []string{"s1", "s2", "s3"}, rec.ids())

	n, err := st.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPushSales_ContinuesPastFailures(t *testing.T) {
	rec := &salesRecorder{failIDs: map[string]bool{"s2": true}}
	e, st := newTestEngine(t, rec.handler(), Options{})
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, st.UpsertSale(ctx, pendingSale(id, base.Add(time.Duration(i)*time.Minute))))
	}

	res, err := e.PushSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushResult{Synced: 2, Failed: 1}, res)

	// s1 and s3 went through despite s2 failing in the middle.
	assert.Equal(t, []string{"s1", "s3"}, rec.ids())

	n, err := st.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPushSales_IdempotentAfterSync(t *testing.T) {
	rec := &salesRecorder{}
	e, st := newTestEngine(t, rec.handler(), Options{})
	ctx := context.Background()

	require.NoError(t, st.UpsertSale(ctx, pendingSale("s1", time.Now().UTC())))

	_, err := e.PushSales(ctx)
	require.NoError(t, err)

	// A second push finds nothing pending and resends nothing.
	res, err := e.PushSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushResult{}, res)
	assert.Equal(t, []string{"s1"}, rec.ids())
}

func TestSyncAll_IndependentDirections(t *testing.T) {
	// Products endpoint broken, sales endpoint fine: the push must
	// still run and succeed.
	rec := &salesRecorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.Handle("/sales", rec.handler())

	e, st := newTestEngine(t, mux, Options{})
	ctx := context.Background()

	require.NoError(t, st.UpsertSale(ctx, pendingSale("s1", time.Now().UTC())))

	res := e.SyncAll(ctx, true)
	assert.Error(t, res.PullErr)
	assert.NoError(t, res.PushErr)
	assert.Equal(t, 1, res.Push.Synced)
}

func TestEngine_RunManualSync(t *testing.T) {
	e, _ := newTestEngine(t, catalogHandler([]map[string]any{
		remoteProduct("p1", "Milk", 5),
	}), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(ctx)
	}()

	select {
	case res := <-e.RequestSync():
		require.NoError(t, res.PullErr)
		assert.Equal(t, 1, res.Pull.Fetched)
	case <-time.After(5 * time.Second):
		t.Fatal("manual sync did not complete")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop on cancel")
	}
}
