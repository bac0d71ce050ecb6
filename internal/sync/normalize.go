package sync

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

// The backend's product payload shape has drifted over time: a bare
// array or an envelope, "id" or "_id", "sellingPrice" or "price",
// stock flat or nested. The raw types below accept every known
// producer shape explicitly; normalize decides what survives.

// looseNumber tolerates a JSON number, a numeric string, or null.
type looseNumber struct {
	value float64
	ok    bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = str
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable stays not-ok; validation drops the record.
		return nil
	}
	n.value = v
	n.ok = true
	return nil
}

// rawProduct is one record as the backend sends it.
type rawProduct struct {
	ID            string      `json:"id"`
	AltID         string      `json:"_id"`
	Name          string      `json:"name"`
	SKU           string      `json:"sku"`
	SellingPrice  looseNumber `json:"sellingPrice"`
	Price         looseNumber `json:"price"`
	StockQuantity looseNumber `json:"stockQuantity"`
	Stock         *struct {
		Quantity looseNumber `json:"quantity"`
	} `json:"stock"`
}

// normalize maps a raw record into a Product, reporting whether it is
// valid. The rules, in order:
//   - id: "id", falling back to "_id"; empty is invalid
//   - name: required, empty is invalid
//   - price: "sellingPrice", falling back to "price"; missing or
//     non-finite is invalid
//   - stock: "stockQuantity", falling back to "stock.quantity",
//     defaulting to 0
//   - sku: optional
func (r rawProduct) normalize() (pos.Product, bool) {
	id := r.ID
	if id == "" {
		id = r.AltID
	}
	if id == "" || r.Name == "" {
		return pos.Product{}, false
	}

	price := r.SellingPrice
	if !price.ok {
		price = r.Price
	}
	if !price.ok || math.IsNaN(price.value) || math.IsInf(price.value, 0) {
		return pos.Product{}, false
	}

	stock := r.StockQuantity
	if !stock.ok && r.Stock != nil {
		stock = r.Stock.Quantity
	}

	return pos.Product{
		ID:            id,
		SKU:           r.SKU,
		Name:          r.Name,
		SellingPrice:  price.value,
		StockQuantity: stock.value,
	}, true
}

// productPage is one decoded page of the catalog endpoint.
type productPage struct {
	Raw []rawProduct

	// Pagination metadata when the envelope carries it; zero values
	// mean the server did not say.
	TotalPages int
	Total      int
}

// pageEnvelope covers the object-shaped payload variants.
type pageEnvelope struct {
	Data       []rawProduct `json:"data"`
	Products   []rawProduct `json:"products"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
	TotalCount int          `json:"totalCount"`
}

// decodeProductPage accepts either a bare JSON array or an envelope
// with {data: [...]} / {products: [...]} plus optional pagination
// metadata.
func decodeProductPage(body []byte) (productPage, error) {
	var arr []rawProduct
	if err := json.Unmarshal(body, &arr); err == nil {
		return productPage{Raw: arr}, nil
	}

	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return productPage{}, fmt.Errorf("decode product page: %w", err)
	}

	raw := env.Data
	if raw == nil {
		raw = env.Products
	}
	total := env.Total
	if total == 0 {
		total = env.TotalCount
	}
	return productPage{Raw: raw, TotalPages: env.TotalPages, Total: total}, nil
}
