package pos

// CartLine is one in-progress line of the cart. Quantities step in
// quarter units below 1 (for weighed goods) and whole units from 1 up.
type CartLine struct {
	Product  Product
	Quantity float64
}

// LineTotal returns the line's price * quantity.
func (l CartLine) LineTotal() float64 {
	return l.Product.SellingPrice * l.Quantity
}

// Cart is the cashier's uncommitted, in-memory sale in progress. It is
// never persisted; completing a sale snapshots it into a Sale and
// clears it. Lines keep insertion order.
type Cart struct {
	lines []CartLine
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// stepUp advances a quantity one increment: quarter steps below 1,
// whole units at 1 and above.
func stepUp(q float64) float64 {
	if q < 1 {
		return q + 0.25
	}
	return q + 1
}

// stepDown reverses stepUp. Descending from 1 goes through the quarter
// steps (0.75, 0.5, 0.25) before reaching zero.
func stepDown(q float64) float64 {
	if q <= 1 {
		return q - 0.25
	}
	return q - 1
}

// Add puts a product in the cart. If it is already present the line is
// incremented one step, otherwise a new line starts at quantity 1.
func (c *Cart) Add(p Product) {
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity = stepUp(c.lines[i].Quantity)
			return
		}
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: 1})
}

// Increment steps a line's quantity up. Unknown product IDs are a no-op.
func (c *Cart) Increment(productID string) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = stepUp(c.lines[i].Quantity)
			return
		}
	}
}

// Decrement steps a line's quantity down, removing the line when the
// quantity reaches zero or below. A zero line is never kept.
func (c *Cart) Decrement(productID string) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			q := stepDown(c.lines[i].Quantity)
			if q <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = q
			}
			return
		}
	}
}

// SetQuantity overwrites a line's quantity. Zero or below removes the
// line.
func (c *Cart) SetQuantity(productID string, q float64) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			if q <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = q
			}
			return
		}
	}
}

// Quantity returns the current quantity for a product, 0 if absent.
func (c *Cart) Quantity(productID string) float64 {
	for _, l := range c.lines {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Items converts the cart lines to sale line items.
func (c *Cart) Items() []SaleItem {
	items := make([]SaleItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, SaleItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.SellingPrice,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// Subtotal sums the line totals at cent precision.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, l := range c.lines {
		sum += l.LineTotal()
	}
	return RoundCents(sum)
}

// Len returns the number of lines in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}
