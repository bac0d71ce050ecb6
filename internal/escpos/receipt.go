package escpos

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

// Receipt column geometry for 80mm paper at the default font: 48
// monospace characters per line, split 24/4/10/10 for the item table
// and 24/24 for the summary rows. Fields are hard-truncated or
// space-padded to exact width so columns always align.
const (
	lineWidth  = 48
	colName    = 24
	colQty     = 4
	colPrice   = 10
	colTotal   = 10
	colSummary = 24
)

// ShopInfo is the static header block printed on every receipt.
type ShopInfo struct {
	Name     string
	Address  string
	Phone    string
	Currency string
}

// EncodeReceipt renders a completed sale as an ESC/POS byte stream:
// reset, centered double-size shop name, centered address/phone, the
// sale metadata, a fixed-column item table, summary rows, thank-you
// lines, paper feed and a full cut.
func EncodeReceipt(sale pos.Sale, shop ShopInfo) []byte {
	var b bytes.Buffer
	divider := strings.Repeat("-", lineWidth)

	b.Write(reset)

	b.Write(alignCenter)
	b.Write(sizeDouble)
	writeLine(&b, shop.Name)
	b.Write(sizeNormal)
	if shop.Address != "" {
		writeLine(&b, shop.Address)
	}
	if shop.Phone != "" {
		writeLine(&b, shop.Phone)
	}
	writeLine(&b, "")

	b.Write(alignLeft)
	writeLine(&b, divider)
	if sale.ReceiptNumber != "" {
		writeLine(&b, "Receipt #: "+sale.ReceiptNumber)
	}
	if sale.Date != "" {
		line := "Date: " + sale.Date
		if sale.Time != "" {
			line += " " + sale.Time
		}
		writeLine(&b, line)
	}
	if sale.PaymentMethod != "" {
		writeLine(&b, "Payment: "+pos.PaymentDisplay(sale.PaymentMethod))
	}
	writeLine(&b, divider)

	writeLine(&b, pad("Item", colName)+padLeft("Qty", colQty)+padLeft("Price", colPrice)+padLeft("Total", colTotal))
	writeLine(&b, divider)

	for _, it := range sale.Items {
		writeLine(&b,
			pad(it.Name, colName)+
				padLeft(formatQty(it.Quantity), colQty)+
				padLeft(pos.FormatMoney(shop.Currency, it.Price), colPrice)+
				padLeft(pos.FormatMoney(shop.Currency, it.LineTotal()), colTotal))
	}

	writeLine(&b, divider)
	writeLine(&b, pad("Subtotal:", colSummary)+padLeft(pos.FormatMoney(shop.Currency, sale.Subtotal), colSummary))
	if sale.Discount > 0 {
		writeLine(&b, pad("Discount:", colSummary)+padLeft(pos.FormatMoney(shop.Currency, sale.Discount), colSummary))
	}
	writeLine(&b, pad("TOTAL:", colSummary)+padLeft(pos.FormatMoney(shop.Currency, sale.TotalAmount), colSummary))

	writeLine(&b, "")
	writeLine(&b, "")
	b.Write(alignCenter)
	writeLine(&b, "Thank you for shopping with us!")
	writeLine(&b, "Please come again")

	b.Write(feed(4))
	b.Write(cutFull)

	return b.Bytes()
}

// writeLine emits text followed by a line feed.
func writeLine(b *bytes.Buffer, text string) {
	b.WriteString(text)
	b.WriteByte(lf)
}

// pad left-aligns text in a fixed-width cell: hard-truncated when too
// long, space-padded when short. No wrapping.
func pad(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft right-aligns text in a fixed-width cell.
func padLeft(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// formatQty renders a quantity without trailing zeros: "2", "0.25".
func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
