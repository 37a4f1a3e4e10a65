package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"storefront/internal/models"
	"storefront/internal/ratelimit"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	orderIDPrefix   = "ORD"
	orderIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	orderIDSuffix   = 9

	// ConfirmationRedirect is where the shopper lands after a successful order.
	ConfirmationRedirect = "/thankyou"
)

// EventPublisher publishes domain events to a broker.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// OrderService runs the order-submission pipeline.
type OrderService struct {
	limiter   ratelimit.Limiter
	mailer    Mailer
	pricer    *Pricer
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
	log       *zap.Logger
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(limiter ratelimit.Limiter, mailer Mailer, pricer *Pricer, publisher EventPublisher, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		limiter:   limiter,
		mailer:    mailer,
		pricer:    pricer,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
		log:       log,
	}
}

// CheckLimit consumes one attempt for (email, ip). It backs the standalone
// limit-check endpoint.
func (s *OrderService) CheckLimit(ctx context.Context, email, ip string) (ratelimit.Decision, error) {
	return s.limiter.Check(ctx, GenerateSubmissionIdentifier(email, ip))
}

// Submit places an order for the lines in cart. Steps run in order and stop at
// the first failure; the cart is only cleared once the e-mail went out.
func (s *OrderService) Submit(ctx context.Context, cart *CartStore, req models.CheckoutRequest, clientIP string) (*models.OrderReceipt, error) {
	if !ValidateHoneypot(req.Website) {
		s.log.Warn("bot submission detected", zap.String("ip", clientIP))
		return nil, &OrderError{Kind: KindBotDetected, Message: "Invalid submission"}
	}

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	lines := cart.Items()
	if len(lines) == 0 {
		return nil, &OrderError{Kind: KindValidation, Message: "Your cart is empty"}
	}

	identifier := GenerateSubmissionIdentifier(req.Email, clientIP)
	decision, err := s.limiter.Check(ctx, identifier)
	if err != nil {
		return nil, &OrderError{Kind: KindUpstream, Message: "Failed to check rate limit", Err: err}
	}
	if !decision.Allowed {
		s.log.Info("order rate limited", zap.String("identifier", identifier))
		return nil, &OrderError{Kind: KindRateLimited, Message: decision.Message}
	}

	orderID, err := s.newOrderID()
	if err != nil {
		return nil, &OrderError{Kind: KindUpstream, Message: "Failed to process order. Please try again.", Err: err}
	}

	totals := s.pricer.Quote(lines)
	order := buildOrder(orderID, req, lines, totals)

	if err := s.mailer.SendOrderConfirmation(ctx, order); err != nil {
		s.log.Error("order confirmation failed", zap.String("order_id", orderID), zap.Error(err))
		switch {
		case errors.Is(err, ErrEmailConfig):
			return nil, &OrderError{Kind: KindConfig, Message: err.Error(), Err: err}
		case errors.Is(err, ErrEmailProvider):
			return nil, &OrderError{Kind: KindUpstream, Message: err.Error(), Err: err}
		default:
			return nil, &OrderError{Kind: KindUpstream, Message: MsgOrderEmailFailed, Err: err}
		}
	}

	if err := cart.Clear(ctx); err != nil {
		// Already e-mailed; the order stands.
		s.log.Error("failed to clear cart after order", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publishConfirmed(order, totals)
	s.log.Info("order placed", zap.String("order_id", orderID), zap.Int("lines", len(lines)))

	return &models.OrderReceipt{
		OrderID:  orderID,
		Message:  "Order placed successfully!",
		Redirect: ConfirmationRedirect,
		Totals:   totals,
	}, nil
}

func (s *OrderService) validateRequest(req models.CheckoutRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &OrderError{Kind: KindValidation, Message: "Invalid checkout form", Err: err}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fieldMessage(e)
	}
	return &OrderError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return "Invalid email address"
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

// newOrderID returns ORD-<unix ms>-<9 random lowercase alphanumerics>.
func (s *OrderService) newOrderID() (string, error) {
	suffix := make([]byte, orderIDSuffix)
	max := big.NewInt(int64(len(orderIDAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate order id: %w", err)
		}
		suffix[i] = orderIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", orderIDPrefix, s.now().UnixMilli(), suffix), nil
}

func buildOrder(orderID string, req models.CheckoutRequest, lines []models.CartLine, totals models.PriceBreakdown) models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			Name:  line.Name,
			Price: line.Price,
			Units: line.Quantity,
			Image: line.Image,
		})
	}
	return models.Order{
		OrderID: orderID,
		Email:   req.Email,
		Items:   items,
		ShippingAddress: models.ShippingAddress{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Address:   req.Address,
			City:      req.City,
			State:     req.State,
			ZipCode:   req.ZipCode,
			Country:   req.Country,
			Phone:     req.Phone,
		},
		Shipping: totals.Shipping,
		Tax:      totals.Tax,
	}
}

func (s *OrderService) publishConfirmed(order models.Order, totals models.PriceBreakdown) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(models.OrderConfirmedEvent{
		OrderID: order.OrderID,
		Email:   order.Email,
		Items:   order.Items,
		Total:   totals.Total,
	})
	if err != nil {
		s.log.Warn("failed to encode order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(models.EventOrderConfirmed, body); err != nil {
		s.log.Warn("failed to publish order event", zap.String("order_id", order.OrderID), zap.Error(err))
	}
}
