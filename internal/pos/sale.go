package pos

import (
	"errors"
	"fmt"
	"time"
)

// Payment method values as produced by this till. Legacy producers used
// lowercase forms (cash, mobile_money, credit); both spellings are
// accepted on display.
const (
	PaymentCash        = "CASH"
	PaymentMobileMoney = "MOBILE_MONEY"
	PaymentCard        = "CARD"
	PaymentTransfer    = "TRANSFER"
)

// ErrInsufficientPayment is returned when the amount tendered does not
// cover the sale total.
var ErrInsufficientPayment = errors.New("amount paid is less than the sale total")

// SaleItem is one line of a sale. Quantity is always > 0 for a
// persisted line; a line stepped down to zero is removed, not stored.
type SaleItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
}

// LineTotal returns price * quantity.
func (it SaleItem) LineTotal() float64 {
	return it.Price * it.Quantity
}

// Sale is a completed transaction. A sale is immutable once created;
// the only field that changes afterwards is Synced, flipped by the sync
// engine after a successful remote submission.
type Sale struct {
	// ID is client-generated and globally unique. The remote backend
	// upserts by this key, which makes retried pushes idempotent.
	ID string `json:"id"`

	// ReceiptNumber is the human-facing number printed on the receipt.
	// Unique enough for a single till, not globally.
	ReceiptNumber string `json:"receiptNumber"`

	UserID       string `json:"userId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`

	// CreatedAt is the canonical UTC timestamp used for ordering.
	CreatedAt time.Time `json:"createdAt"`

	// Date and Time are display-formatted strings derived from
	// CreatedAt, kept because the receipt prints them verbatim.
	Date string `json:"date"`
	Time string `json:"time"`

	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	TotalAmount float64 `json:"totalAmount"`
	AmountPaid  float64 `json:"amountPaid"`
	ChangeGiven float64 `json:"changeGiven"`

	PaymentMethod string `json:"paymentMethod"`

	Synced bool `json:"synced"`

	Items []SaleItem `json:"items"`
}

// NewReceiptNumber derives a human-facing receipt number from the sale
// time: date prefix plus a short time-derived suffix.
func NewReceiptNumber(t time.Time) string {
	return fmt.Sprintf("R%s-%04d", t.Format("20060102"), t.UnixMilli()%10000)
}

// DisplayDate formats a timestamp the way the receipt shows the date.
func DisplayDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DisplayTime formats a timestamp the way the receipt shows the time.
func DisplayTime(t time.Time) string {
	return t.Format("3:04 PM")
}

// ValidateChange checks that the amount tendered covers the total and
// returns the change due. Amounts are compared at cent precision so
// that float noise does not reject an exact payment.
func ValidateChange(total, amountPaid float64) (float64, error) {
	change := RoundCents(amountPaid - total)
	if change < 0 {
		return 0, fmt.Errorf("%w: total %.2f, paid %.2f", ErrInsufficientPayment, total, amountPaid)
	}
	return change, nil
}
