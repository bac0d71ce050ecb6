package escpos

// ESC/POS control sequences. Byte values follow the Epson ESC/POS
// reference; any compliant printer or driver is a valid backend.

const lf = 0x0A

var (
	// reset initializes the printer (ESC @).
	reset = []byte{0x1B, 0x40}

	// alignLeft / alignCenter select justification (ESC a n).
	alignLeft   = []byte{0x1B, 0x61, 0x00}
	alignCenter = []byte{0x1B, 0x61, 0x01}

	// sizeDouble selects double width+height characters, sizeNormal
	// restores the default (GS ! n).
	sizeDouble = []byte{0x1D, 0x21, 0x11}
	sizeNormal = []byte{0x1D, 0x21, 0x00}

	// cutFull performs a full paper cut (GS V 0).
	cutFull = []byte{0x1D, 0x56, 0x00}

	// hriNone suppresses the printer's own human-readable barcode text
	// (GS H 0); label batches print the digits themselves for column
	// alignment.
	hriNone = []byte{0x1D, 0x48, 0x00}

	// barcodeHeight / barcodeWidth set the label barcode geometry
	// (GS h n, GS w n).
	barcodeHeight = []byte{0x1D, 0x68, 80}
	barcodeWidth  = []byte{0x1D, 0x77, 2}
)

// feed advances the paper n lines (ESC d n).
func feed(n byte) []byte {
	return []byte{0x1B, 0x64, n}
}

// absolutePosition moves the print cursor to a horizontal dot offset
// (ESC $ nL nH).
func absolutePosition(dots int) []byte {
	return []byte{0x1B, 0x24, byte(dots % 256), byte(dots / 256)}
}

// code128 emits a CODE128 barcode in code set B (GS k 73 n {B data).
func code128(value string) []byte {
	payload := append([]byte{0x7B, 0x42}, value...)
	out := []byte{0x1D, 0x6B, 0x49, byte(len(payload))}
	return append(out, payload...)
}
