package main

import (
	"fmt"
	"math"
)

const (
	summaryPrompt   = "Selecciona una cantidad para ver el total."
	summarySelected = "Has seleccionado %d %s de %s."
)

// PurchaseCalculator keeps the quantity chosen for one product and derives the
// total and every display string from it.
type PurchaseCalculator struct {
	product   Product
	state     PurchaseState
	formatter *CurrencyFormatter
}

// NewPurchaseCalculator starts at quantity 0. The unit price is copied from the
// product and never changes afterwards.
func NewPurchaseCalculator(p Product, formatter *CurrencyFormatter) *PurchaseCalculator {
	return &PurchaseCalculator{
		product:   p,
		state:     PurchaseState{UnitPrice: p.UnitPrice},
		formatter: formatter,
	}
}

// Increment adds one unit. The quantity only stops growing where the total
// would no longer fit in an int64.
func (c *PurchaseCalculator) Increment() {
	if c.state.Quantity >= c.maxQuantity() {
		return
	}
	c.state.Quantity++
}

// Decrement removes one unit; at zero it does nothing.
func (c *PurchaseCalculator) Decrement() {
	if c.state.Quantity > 0 {
		c.state.Quantity--
	}
}

func (c *PurchaseCalculator) maxQuantity() int64 {
	if c.state.UnitPrice <= 0 {
		return math.MaxInt64
	}
	return math.MaxInt64 / c.state.UnitPrice
}

func (c *PurchaseCalculator) Quantity() int64  { return c.state.Quantity }
func (c *PurchaseCalculator) UnitPrice() int64 { return c.state.UnitPrice }
func (c *PurchaseCalculator) Product() Product { return c.product }
func (c *PurchaseCalculator) Total() int64     { return c.state.Total() }

// CanCheckout gates the "Continuar con la compra" action.
func (c *PurchaseCalculator) CanCheckout() bool { return c.state.Quantity > 0 }

func (c *PurchaseCalculator) FormatCurrency(amount int64) string {
	return c.formatter.Format(amount)
}

func (c *PurchaseCalculator) SummaryText() string {
	q := c.state.Quantity
	if q == 0 {
		return summaryPrompt
	}
	return fmt.Sprintf(summarySelected, q, unitWord(q), c.product.Name)
}

func unitWord(q int64) string {
	if q == 1 {
		return "unidad"
	}
	return "unidades"
}

func (c *PurchaseCalculator) Snapshot() Snapshot {
	total := c.Total()
	return Snapshot{
		Product:       c.product,
		State:         c.state,
		Total:         total,
		UnitPriceText: c.FormatCurrency(c.state.UnitPrice),
		TotalText:     c.FormatCurrency(total),
		Summary:       c.SummaryText(),
		CanCheckout:   c.CanCheckout(),
	}
}
