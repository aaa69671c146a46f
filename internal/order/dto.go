package order

// CheckoutItem is one cart line in an anonymous checkout payload.
// swagger:model CheckoutItem
type CheckoutItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Name      string `json:"name"       example:"Mechanical Keyboard"`
	Quantity  int    `json:"quantity"   example:"2"`
	Price     string `json:"price"      example:"199.90"`
	Image     string `json:"image,omitempty"`
}

// CheckoutRequest is the checkout payload. Authenticated callers send only
// their identity and the server uses the persisted cart; anonymous callers
// send the client-held cart lines in items.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	Items          []CheckoutItem `json:"items,omitempty"`
	Customer       Customer       `json:"customer"`
	ShippingAddr   Address        `json:"shipping_address"`
	BillingAddr    Address        `json:"billing_address"`
	PaymentMethod  PaymentMethod  `json:"payment_method" example:"card"`
	Pricing        Pricing        `json:"pricing"`
}

// StatusUpdateRequest moves an order along one of the two status axes.
// swagger:model StatusUpdateRequest
type StatusUpdateRequest struct {
	Status string `json:"status" example:"processing"`
}

// NotesUpdateRequest replaces an order's free-form notes.
// swagger:model NotesUpdateRequest
type NotesUpdateRequest struct {
	Notes string `json:"notes" example:"customer asked for gift wrap"`
}
