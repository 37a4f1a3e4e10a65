package services

import (
	"errors"
	"fmt"
)

// OrderErrorKind classifies why an order was rejected.
type OrderErrorKind int

const (
	// KindValidation is a missing or malformed field, reported inline.
	KindValidation OrderErrorKind = iota
	// KindBotDetected is a tripped honeypot; the message stays generic.
	KindBotDetected
	// KindRateLimited carries the limiter's retry estimate.
	KindRateLimited
	// KindUpstream is a failed call to the limiter store or e-mail API.
	KindUpstream
	// KindConfig is a missing credential detected before any call.
	KindConfig
)

func (k OrderErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBotDetected:
		return "bot_detected"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// OrderError is the typed rejection returned by the order pipeline.
type OrderError struct {
	Kind    OrderErrorKind
	Message string
	// Fields maps form field names to validation messages.
	Fields map[string]string
	Err    error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// AsOrderError extracts an *OrderError from err.
func AsOrderError(err error) (*OrderError, bool) {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// ErrEmailConfig marks missing e-mail credentials.
var ErrEmailConfig = errors.New("missing required EmailJS configuration")

// ErrImageStoreDisabled is returned by uploads when no bucket is configured.
var ErrImageStoreDisabled = errors.New("image uploads are not configured")

// ErrQuantityLimit is returned when a mutation would push a cart line past
// MaxLineQuantity. The cart is left unchanged.
var ErrQuantityLimit = fmt.Errorf("quantity cannot exceed %d per item", MaxLineQuantity)

// MsgOrderEmailFailed replaces mailer errors whose text is not fit for shoppers.
const MsgOrderEmailFailed = "Failed to send order confirmation. Please try again."

// ErrEmailProvider marks a rejection reported by the e-mail provider. Its text
// is safe to show to the shopper; other mailer errors are not.
var ErrEmailProvider = errors.New("email provider error")
