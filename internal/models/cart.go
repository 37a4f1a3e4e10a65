package models

// CartLine is one row of a cart: a distinct product and how many units of it.
// Quantity is always at least 1 once a line is stored.
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// CartItemInput is the product snapshot a caller adds to the cart.
type CartItemInput struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
	Image string  `json:"image"`
}

// NotificationLevel mirrors the toast levels shown to shoppers.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationInfo    NotificationLevel = "info"
	NotificationError   NotificationLevel = "error"
)

// Notification is a user-visible message emitted by a cart mutation.
type Notification struct {
	Level   NotificationLevel `json:"type"`
	Message string            `json:"message"`
}
