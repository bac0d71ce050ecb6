package pos

// Product is one catalog entry. The catalog is sourced from the remote
// backend and replaced wholesale on each successful pull; between pulls
// it is read-only.
type Product struct {
	// ID is the stable external identifier assigned by the backend.
	ID string `json:"id"`

	// SKU is an optional alternate lookup key, used for barcode scans.
	SKU string `json:"sku,omitempty"`

	Name string `json:"name"`

	// SellingPrice is the unit price, never negative.
	SellingPrice float64 `json:"sellingPrice"`

	// StockQuantity may be fractional for weighed goods.
	StockQuantity float64 `json:"stockQuantity"`
}
