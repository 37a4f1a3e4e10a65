package models

// CheckoutRequest is the checkout form as submitted by the shopper.
// Website is the honeypot field and must stay empty.
type CheckoutRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone" validate:"required"`
	Address   string  `json:"address" validate:"required"`
	City      string  `json:"city" validate:"required"`
	State     string  `json:"state" validate:"required"`
	ZipCode   string  `json:"zip_code" validate:"required"`
	Country   string  `json:"country" validate:"required"`
	Website   *string `json:"website,omitempty"`
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// OrderItem is a line of an order as it appears in the confirmation e-mail.
type OrderItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Units int     `json:"units"`
	Image string  `json:"image"`
}

// Order only lives long enough to be e-mailed; it is never stored.
type Order struct {
	OrderID         string          `json:"order_id"`
	Email           string          `json:"email"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Shipping        float64         `json:"shipping"`
	Tax             float64         `json:"tax"`
}

// PriceBreakdown is the cost summary for a set of cart lines.
type PriceBreakdown struct {
	Subtotal              float64 `json:"subtotal"`
	Shipping              float64 `json:"shipping"`
	Tax                   float64 `json:"tax"`
	Total                 float64 `json:"total"`
	FreeShipping          bool    `json:"free_shipping"`
	FreeShippingRemaining float64 `json:"free_shipping_remaining"`
}

// OrderReceipt is returned to the shopper after a successful checkout.
type OrderReceipt struct {
	OrderID  string         `json:"order_id"`
	Message  string         `json:"message"`
	Redirect string         `json:"redirect"`
	Totals   PriceBreakdown `json:"totals"`
}

// ContactMessage is the general contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
	Phone   string `json:"phone"`
}

// EventOrderConfirmed is published once the confirmation e-mail has gone out.
const EventOrderConfirmed = "order.confirmed"

// OrderConfirmedEvent is the body of an order.confirmed event.
type OrderConfirmedEvent struct {
	OrderID string      `json:"orderID"`
	Email   string      `json:"email"`
	Items   []OrderItem `json:"items"`
	Total   float64     `json:"total"`
}
