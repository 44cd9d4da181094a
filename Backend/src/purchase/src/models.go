package main

// Product es la ficha del catálogo que alimenta la tarjeta de compra.
type Product struct {
	SKU       string
	Name      string
	UnitPrice int64 // unidades enteras de la moneda (CLP no tiene decimales)
	ImageURL  string
	Currency  string
}

// PurchaseState holds the only mutable data of a product card. The total is
// always derived, never stored.
type PurchaseState struct {
	Quantity  int64
	UnitPrice int64
}

func (s PurchaseState) Total() int64 { return s.Quantity * s.UnitPrice }

// Snapshot is a copy of a calculator taken right after an interaction, safe to
// hand out of the session store.
type Snapshot struct {
	Product       Product
	State         PurchaseState
	Total         int64
	UnitPriceText string
	TotalText     string
	Summary       string
	CanCheckout   bool
}
