package main

// Eventos publicados por Purchase
const (
	RKCheckoutRequested = "purchase.checkout.requested"
)

type CheckoutRequestedPayload struct {
	EventID     string `json:"event_id"`
	SessionID   string `json:"session_id"`
	ProductSKU  string `json:"product_sku"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
	TotalText   string `json:"total_text"`
	Currency    string `json:"currency"`
	RequestedAt int64  `json:"requested_at"`
}
