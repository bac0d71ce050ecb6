// Package escpos builds raw ESC/POS byte streams for thermal printers:
// sale receipts and barcode label batches.
//
// Every encoder is a pure function: identical structured input yields
// identical bytes. The only internal randomness - generated barcode
// values - is isolated behind an injectable DigitSource so tests can
// pin the output exactly (golden byte comparison).
//
// No I/O happens here; internal/printer delivers the bytes as a raw
// job.
package escpos
