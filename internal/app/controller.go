// Package app ties the till together: it owns the in-memory cart,
// completes sales against the store, hands pending sales to the sync
// engine and drives the receipt printer. The cart is never persisted;
// only completed sales are durable.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oforidesmond/pulse-pos/internal/escpos"
	"github.com/oforidesmond/pulse-pos/internal/pos"
	"github.com/oforidesmond/pulse-pos/internal/printer"
	"github.com/oforidesmond/pulse-pos/internal/store"
	"github.com/oforidesmond/pulse-pos/internal/sync"
)

// Checkout carries the operator's input for completing the current cart.
type Checkout struct {
	PaymentMethod string
	AmountPaid    float64
	Discount      float64
	CustomerName  string
}

// SaleReceipt is the outcome of a completed sale. Printed reports
// whether the physical receipt made it out; when false the caller
// shows PrintErr and the sale stands regardless.
type SaleReceipt struct {
	Sale     pos.Sale
	Printed  bool
	PrintErr error
}

// Controller exposes the till's operations to the command surface.
type Controller struct {
	store   *store.Store
	engine  *sync.Engine
	printer printer.Dispatcher
	log     *zap.Logger

	shop   escpos.ShopInfo
	userID string

	ids    pos.IDGenerator
	digits escpos.DigitSource
	now    func() time.Time

	cart *pos.Cart
}

// Options configures a Controller. Zero-value fields fall back to
// production defaults; tests inject fixed generators and clocks.
type Options struct {
	Shop   escpos.ShopInfo
	UserID string

	IDs    pos.IDGenerator
	Digits escpos.DigitSource
	Now    func() time.Time
}

// NewController wires a controller over an open store. The engine may
// be nil when the till runs without a backend; pushes are then simply
// not requested.
func NewController(st *store.Store, engine *sync.Engine, disp printer.Dispatcher, log *zap.Logger, opts Options) *Controller {
	if opts.IDs == nil {
		opts.IDs = pos.UUIDGenerator{}
	}
	if opts.Digits == nil {
		opts.Digits = escpos.RandomDigits
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		store:   st,
		engine:  engine,
		printer: disp,
		log:     log,
		shop:    opts.Shop,
		userID:  opts.UserID,
		ids:     opts.IDs,
		digits:  opts.Digits,
		now:     opts.Now,
		cart:    pos.NewCart(),
	}
}

// Cart returns the live cart for quantity edits.
func (c *Controller) Cart() *pos.Cart {
	return c.cart
}

// OnCatalogReplaced registers a listener for catalog refreshes, for
// display surfaces that show the product list. Register before the
// engine loop starts. No-op when running without a backend.
func (c *Controller) OnCatalogReplaced(fn func(sync.CatalogReplaced)) {
	if c.engine != nil {
		c.engine.Notify(fn)
	}
}

// AddByCode looks a product up by SKU or id and adds it to the cart.
func (c *Controller) AddByCode(ctx context.Context, code string) (pos.Product, error) {
	p, err := c.store.FindProductByCode(ctx, code)
	if err != nil {
		return pos.Product{}, err
	}
	c.cart.Add(p)
	return p, nil
}

// CompleteSale turns the current cart into a durable sale. The sale and
// its items are written in one transaction before anything else
// happens; a printer failure afterwards never loses the sale.
func (c *Controller) CompleteSale(ctx context.Context, in Checkout) (SaleReceipt, error) {
	if c.cart.Len() == 0 {
		return SaleReceipt{}, fmt.Errorf("complete sale: cart is empty")
	}

	subtotal := pos.RoundCents(c.cart.Subtotal())
	total := pos.RoundCents(subtotal - in.Discount)
	change, err := pos.ValidateChange(total, in.AmountPaid)
	if err != nil {
		return SaleReceipt{}, err
	}

	now := c.now().UTC()
	sale := pos.Sale{
		ID:            c.ids.NewID(),
		ReceiptNumber: pos.NewReceiptNumber(now),
		UserID:        c.userID,
		CustomerName:  in.CustomerName,
		CreatedAt:     now,
		Date:          pos.DisplayDate(now),
		Time:          pos.DisplayTime(now),
		Subtotal:      subtotal,
		Discount:      in.Discount,
		TotalAmount:   total,
		AmountPaid:    in.AmountPaid,
		ChangeGiven:   change,
		PaymentMethod: in.PaymentMethod,
		Items:         c.cart.Items(),
	}

	if err := c.store.UpsertSale(ctx, sale); err != nil {
		return SaleReceipt{}, fmt.Errorf("complete sale: %w", err)
	}
	c.cart.Clear()

	c.log.Info("sale completed",
		zap.String("sale_id", sale.ID),
		zap.String("receipt", sale.ReceiptNumber),
		zap.Float64("total", sale.TotalAmount))

	if c.engine != nil {
		c.engine.RequestPush()
	}

	result := SaleReceipt{Sale: sale}
	result.Printed, result.PrintErr = c.print(ctx, escpos.EncodeReceipt(sale, c.shop))
	return result, nil
}

// Reprint re-encodes and prints the receipt for a stored sale.
func (c *Controller) Reprint(ctx context.Context, saleID string) (SaleReceipt, error) {
	sale, err := c.store.GetSale(ctx, saleID)
	if err != nil {
		return SaleReceipt{}, fmt.Errorf("reprint: %w", err)
	}
	result := SaleReceipt{Sale: sale}
	result.Printed, result.PrintErr = c.print(ctx, escpos.EncodeReceipt(sale, c.shop))
	return result, nil
}

// PrintLabels prints a batch of barcode labels. A fixed barcode value
// repeats on every label; an empty value gets fresh random digits per
// label.
func (c *Controller) PrintLabels(ctx context.Context, req escpos.LabelRequest) error {
	if req.Count <= 0 {
		return fmt.Errorf("print labels: count must be positive")
	}
	if err := c.printer.Print(ctx, escpos.EncodeLabels(req, c.digits)); err != nil {
		return fmt.Errorf("print labels: %w", err)
	}
	return nil
}

func (c *Controller) print(ctx context.Context, payload []byte) (bool, error) {
	if err := c.printer.Print(ctx, payload); err != nil {
		c.log.Warn("print failed", zap.Error(err))
		return false, err
	}
	return true, nil
}
