package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milk() Product {
	return Product{ID: "p1", SKU: "MILK-1L", Name: "Milk", SellingPrice: 5.00}
}

func sugar() Product {
	return Product{ID: "p4", SKU: "SUG-1KG", Name: "Sugar 1kg", SellingPrice: 12.00}
}

func TestCart_AddStartsAtOne(t *testing.T) {
	c := NewCart()
	c.Add(milk())

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 1.0, c.Quantity("p1"))
}

func TestCart_AddExistingSteps(t *testing.T) {
	c := NewCart()
	c.Add(milk())
	c.Add(milk())

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2.0, c.Quantity("p1"))
}

func TestCart_QuantityStepping(t *testing.T) {
	c := NewCart()
	c.Add(sugar())
	c.SetQuantity("p4", 0.25)

	// Quarter steps below 1, whole units at and above 1.
	steps := []float64{0.5, 0.75, 1, 2, 3}
	for _, want := range steps {
		c.Increment("p4")
		assert.Equal(t, want, c.Quantity("p4"))
	}

	// Decrement reverses the path: 3 -> 2 -> 1 -> 0.75 -> 0.5 -> 0.25.
	down := []float64{2, 1, 0.75, 0.5, 0.25}
	for _, want := range down {
		c.Decrement("p4")
		assert.Equal(t, want, c.Quantity("p4"))
	}

	// One more step removes the line entirely - no zero line survives.
	c.Decrement("p4")
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Quantity("p4"))
}

func TestCart_SetQuantityZeroRemoves(t *testing.T) {
	c := NewCart()
	c.Add(milk())
	c.SetQuantity("p1", 0)

	assert.Equal(t, 0, c.Len())
}

func TestCart_SubtotalAndItems(t *testing.T) {
	c := NewCart()
	c.Add(milk())
	c.Add(milk()) // qty 2 @ 5.00
	c.Add(sugar())
	c.SetQuantity("p4", 0.25) // 0.25 @ 12.00

	assert.Equal(t, 13.00, c.Subtotal())

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, SaleItem{ProductID: "p1", Name: "Milk", Price: 5.00, Quantity: 2}, items[0])
	assert.Equal(t, 3.00, items[1].LineTotal())
}

func TestCart_Clear(t *testing.T) {
	c := NewCart()
	c.Add(milk())
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Subtotal())
}
