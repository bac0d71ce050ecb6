package escpos

import (
	"bytes"
	"math/rand"
	"strings"
)

// Paper width classes and their printable dot columns.
const (
	Paper58mm = 58
	Paper80mm = 80

	dots58mm = 384
	dots80mm = 576

	// Labels print three across.
	labelColumns = 3

	barcodeDigits = 12
)

// LabelRequest describes one barcode label batch.
type LabelRequest struct {
	// Text is the item name the batch is for; carried on the print job
	// for identification, not rendered between the barcodes.
	Text string

	// Count is the number of labels to print.
	Count int

	// Barcode, when set, is printed on every label. When empty each
	// label gets an independent random 12-digit value.
	Barcode string

	// PaperWidth is the paper class in millimetres (58 or 80).
	// Anything else falls back to 80mm.
	PaperWidth int
}

// DigitSource produces n decimal digits. The default is math/rand;
// tests inject a fixed source for byte-exact comparison.
type DigitSource func(n int) string

// RandomDigits is the production DigitSource. Values are random only -
// uniqueness is not checked; label barcodes identify a product class,
// not an instance.
func RandomDigits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + rand.Intn(10)))
	}
	return sb.String()
}

// EncodeLabels renders a label batch as an ESC/POS byte stream. Labels
// are laid out in a fixed 3-column grid: for each row of up to three
// labels the barcodes are positioned and printed first, then the
// literal digit strings beneath them, then a line feed and a short
// vertical feed. The batch ends with a multi-line feed and a full cut,
// matching the receipt convention.
func EncodeLabels(req LabelRequest, digits DigitSource) []byte {
	if digits == nil {
		digits = RandomDigits
	}

	paperDots := dots80mm
	if req.PaperWidth == Paper58mm {
		paperDots = dots58mm
	}
	colWidth := paperDots / labelColumns

	values := make([]string, req.Count)
	for i := range values {
		if req.Barcode != "" {
			values[i] = req.Barcode
		} else {
			values[i] = digits(barcodeDigits)
		}
	}

	var b bytes.Buffer
	b.Write(reset)
	b.Write(alignLeft)
	b.Write(barcodeHeight)
	b.Write(barcodeWidth)
	b.Write(hriNone)

	for row := 0; row < len(values); row += labelColumns {
		end := row + labelColumns
		if end > len(values) {
			end = len(values)
		}

		for i := row; i < end; i++ {
			b.Write(absolutePosition((i - row) * colWidth))
			b.Write(code128(values[i]))
		}
		b.WriteByte(lf)

		for i := row; i < end; i++ {
			b.Write(absolutePosition((i - row) * colWidth))
			b.WriteString(values[i])
		}
		b.WriteByte(lf)
		b.Write(feed(1))
	}

	b.Write(feed(4))
	b.Write(cutFull)

	return b.Bytes()
}
