package escpos

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

func testShop() ShopInfo {
	return ShopInfo{
		Name:     "Pulse Mart",
		Address:  "12 High Street, Accra",
		Phone:    "Tel: 030-123-4567",
		Currency: "GHS",
	}
}

func cashSale() pos.Sale {
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	return pos.Sale{
		ID:            "s1",
		ReceiptNumber: "R20260828-0001",
		CreatedAt:     at,
		Date:          pos.DisplayDate(at),
		Time:          pos.DisplayTime(at),
		Subtotal:      10.00,
		Discount:      0,
		TotalAmount:   10.00,
		AmountPaid:    20.00,
		ChangeGiven:   10.00,
		PaymentMethod: pos.PaymentCash,
		Items: []pos.SaleItem{
			{ProductID: "p1", Name: "Milk", Price: 5.00, Quantity: 2},
		},
	}
}

func TestEncodeReceipt_Deterministic(t *testing.T) {
	a := EncodeReceipt(cashSale(), testShop())
	b := EncodeReceipt(cashSale(), testShop())
	assert.Equal(t, a, b)
}

func TestEncodeReceipt_ItemRowColumns(t *testing.T) {
	out := EncodeReceipt(cashSale(), testShop())

	// Name cell is exactly 24 characters, qty right-aligned in 4,
	// unit price and line total right-aligned in 10.
	row := "Milk                    " + "   2" + "  GHS 5.00" + " GHS 10.00"
	require.Len(t, row, 48)
	assert.True(t, bytes.Contains(out, []byte(row)), "item row not found in output")

	// The line total cell is "GHS 10.00" right-aligned in a
	// 10-character field.
	assert.True(t, bytes.HasSuffix([]byte(row), []byte(" GHS 10.00")))
}

func TestEncodeReceipt_LongNameTruncated(t *testing.T) {
	sale := cashSale()
	sale.Items = []pos.SaleItem{
		{Name: "Extraordinarily Long Product Name", Price: 1.00, Quantity: 1},
	}
	out := EncodeReceipt(sale, testShop())

	cell := pad("Extraordinarily Long Product Name", colName)
	require.Len(t, cell, 24)
	assert.Equal(t, "Extraordinarily Long Pro", cell)
	assert.True(t, bytes.Contains(out, []byte(cell)))
}

func TestEncodeReceipt_ConditionalLines(t *testing.T) {
	sale := cashSale()
	sale.ReceiptNumber = ""
	sale.Date = ""
	sale.Time = ""
	sale.PaymentMethod = ""
	out := EncodeReceipt(sale, testShop())

	assert.False(t, bytes.Contains(out, []byte("Receipt #:")))
	assert.False(t, bytes.Contains(out, []byte("Date:")))
	assert.False(t, bytes.Contains(out, []byte("Payment:")))
}

func TestEncodeReceipt_DiscountRowOnlyWhenPositive(t *testing.T) {
	out := EncodeReceipt(cashSale(), testShop())
	assert.False(t, bytes.Contains(out, []byte("Discount:")))

	sale := cashSale()
	sale.Discount = 2.00
	sale.TotalAmount = 8.00
	out = EncodeReceipt(sale, testShop())
	assert.True(t, bytes.Contains(out, []byte("Discount:")))
	assert.True(t, bytes.Contains(out, []byte("GHS 2.00")))
}

func TestEncodeReceipt_PaymentDisplayMapping(t *testing.T) {
	sale := cashSale()
	sale.PaymentMethod = "mobile_money"
	out := EncodeReceipt(sale, testShop())
	assert.True(t, bytes.Contains(out, []byte("Payment: Mobile Money")))
}

func TestEncodeReceipt_FrameControlSequences(t *testing.T) {
	out := EncodeReceipt(cashSale(), testShop())

	// Starts with a printer reset, ends with feed + full cut.
	assert.True(t, bytes.HasPrefix(out, reset))
	assert.True(t, bytes.HasSuffix(out, append(feed(4), cutFull...)))

	// Shop name is printed double-size.
	assert.True(t, bytes.Contains(out, append(sizeDouble, []byte("Pulse Mart")...)))
}

func TestEncodeReceipt_Golden(t *testing.T) {
	out := EncodeReceipt(cashSale(), testShop())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "receipt_cash_sale", out)
}

func TestPadHelpers(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abcd", pad("abcdef", 4))
	assert.Equal(t, "  ab", padLeft("ab", 4))
	assert.Equal(t, "0.25", formatQty(0.25))
	assert.Equal(t, "2", formatQty(2))
}
