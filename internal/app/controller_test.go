package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oforidesmond/pulse-pos/internal/escpos"
	"github.com/oforidesmond/pulse-pos/internal/pos"
	"github.com/oforidesmond/pulse-pos/internal/store"
	"github.com/oforidesmond/pulse-pos/internal/sync"
)

// fakePrinter records payloads and optionally fails every print.
type fakePrinter struct {
	payloads [][]byte
	err      error
}

func (p *fakePrinter) Print(_ context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func testShop() escpos.ShopInfo {
	return escpos.ShopInfo{
		Name:     "Pulse Mart",
		Address:  "12 High Street, Accra",
		Phone:    "Tel: 030-123-4567",
		Currency: "GHS",
	}
}

func fixedDigits(n int) string {
	return "123456789012"[:n]
}

func newTestController(t *testing.T, prn *fakePrinter) (*Controller, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "till.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fixedNow := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	ctrl := NewController(st, nil, prn, zaptest.NewLogger(t), Options{
		Shop:   testShop(),
		UserID: "u-1",
		IDs:    pos.NewFixedIDs("sale-1", "sale-2"),
		Digits: fixedDigits,
		Now:    func() time.Time { return fixedNow },
	})

	require.NoError(t, st.ReplaceProducts(context.Background(), []pos.Product{
		{ID: "p1", Name: "Milk", SKU: "MLK-1", SellingPrice: 5.00, StockQuantity: 10},
		{ID: "p2", Name: "Bread", SKU: "BRD-1", SellingPrice: 3.50, StockQuantity: 4},
	}))

	return ctrl, st
}

func TestAddByCode(t *testing.T) {
	ctrl, _ := newTestController(t, &fakePrinter{})
	ctx := context.Background()

	p, err := ctrl.AddByCode(ctx, "mlk-1")
	require.NoError(t, err)
	assert.Equal(t, "Milk", p.Name)
	assert.Equal(t, 1.0, ctrl.Cart().Quantity("p1"))

	_, err = ctrl.AddByCode(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompleteSale(t *testing.T) {
	prn := &fakePrinter{}
	ctrl, st := newTestController(t, prn)
	ctx := context.Background()

	_, err := ctrl.AddByCode(ctx, "MLK-1")
	require.NoError(t, err)
	ctrl.Cart().Increment("p1") // 2 x 5.00

	result, err := ctrl.CompleteSale(ctx, Checkout{
		PaymentMethod: pos.PaymentCash,
		AmountPaid:    20.00,
	})
	require.NoError(t, err)

	assert.Equal(t, "sale-1", result.Sale.ID)
	assert.Equal(t, 10.00, result.Sale.TotalAmount)
	assert.Equal(t, 10.00, result.Sale.ChangeGiven)
	assert.Equal(t, "28/08/2026", result.Sale.Date)
	assert.True(t, result.Printed)
	assert.Equal(t, 0, ctrl.Cart().Len())

	// Durable before anything else: the stored sale matches.
	stored, err := st.GetSale(ctx, "sale-1")
	require.NoError(t, err)
	assert.Equal(t, result.Sale.ReceiptNumber, stored.ReceiptNumber)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2.0, stored.Items[0].Quantity)

	// The printed payload is exactly the encoded receipt.
	require.Len(t, prn.payloads, 1)
	assert.Equal(t, escpos.EncodeReceipt(result.Sale, testShop()), prn.payloads[0])
}

func TestCompleteSale_EmptyCart(t *testing.T) {
	ctrl, _ := newTestController(t, &fakePrinter{})

	_, err := ctrl.CompleteSale(context.Background(), Checkout{AmountPaid: 10})
	assert.Error(t, err)
}

func TestCompleteSale_InsufficientPayment(t *testing.T) {
	ctrl, st := newTestController(t, &fakePrinter{})
	ctx := context.Background()

	_, err := ctrl.AddByCode(ctx, "MLK-1")
	require.NoError(t, err)

	_, err = ctrl.CompleteSale(ctx, Checkout{
		PaymentMethod: pos.PaymentCash,
		AmountPaid:    4.99,
	})
	assert.ErrorIs(t, err, pos.ErrInsufficientPayment)

	// Nothing persisted, cart intact for a corrected retry.
	assert.Equal(t, 1, ctrl.Cart().Len())
	pending, err := st.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestCompleteSale_PrintFailureKeepsSale(t *testing.T) {
	prn := &fakePrinter{err: errors.New("printer offline")}
	ctrl, st := newTestController(t, prn)
	ctx := context.Background()

	_, err := ctrl.AddByCode(ctx, "BRD-1")
	require.NoError(t, err)

	result, err := ctrl.CompleteSale(ctx, Checkout{
		PaymentMethod: pos.PaymentCash,
		AmountPaid:    5.00,
	})
	require.NoError(t, err)
	assert.False(t, result.Printed)
	assert.Error(t, result.PrintErr)

	_, err = st.GetSale(ctx, result.Sale.ID)
	assert.NoError(t, err)
}

func TestReprint(t *testing.T) {
	prn := &fakePrinter{}
	ctrl, _ := newTestController(t, prn)
	ctx := context.Background()

	_, err := ctrl.AddByCode(ctx, "MLK-1")
	require.NoError(t, err)
	first, err := ctrl.CompleteSale(ctx, Checkout{PaymentMethod: pos.PaymentCash, AmountPaid: 5})
	require.NoError(t, err)

	again, err := ctrl.Reprint(ctx, first.Sale.ID)
	require.NoError(t, err)
	assert.True(t, again.Printed)
	assert.Equal(t, first.Sale.ReceiptNumber, again.Sale.ReceiptNumber)
	require.Len(t, prn.payloads, 2)
	assert.Equal(t, prn.payloads[0], prn.payloads[1])

	_, err = ctrl.Reprint(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOnCatalogReplaced_NoEngine(t *testing.T) {
	ctrl, _ := newTestController(t, &fakePrinter{})

	// Without a backend there is no engine; registering must not panic.
	ctrl.OnCatalogReplaced(func(sync.CatalogReplaced) {
		t.Fatal("listener fired without an engine")
	})
}

func TestPrintLabels(t *testing.T) {
	prn := &fakePrinter{}
	ctrl, _ := newTestController(t, prn)
	ctx := context.Background()

	req := escpos.LabelRequest{Text: "Milk", Count: 3, Barcode: "400112345678"}
	require.NoError(t, ctrl.PrintLabels(ctx, req))
	require.Len(t, prn.payloads, 1)
	assert.Equal(t, escpos.EncodeLabels(req, fixedDigits), prn.payloads[0])

	assert.Error(t, ctrl.PrintLabels(ctx, escpos.LabelRequest{Count: 0}))
}
