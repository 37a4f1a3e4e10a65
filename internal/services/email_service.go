package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Mailer dispatches transactional e-mail.
type Mailer interface {
	SendContact(ctx context.Context, msg models.ContactMessage) error
	SendOrderConfirmation(ctx context.Context, order models.Order) error
}

// EmailJSConfig holds the EmailJS credentials and endpoint.
type EmailJSConfig struct {
	ServiceID            string
	ContactTemplateID    string
	OrderTemplateID      string
	PublicKey            string
	PrivateKey           string
	APIURL               string
	Timeout              time.Duration
	ContactRecipientName string
}

// ConfigStatus reports which credentials are set, without revealing them.
func (c EmailJSConfig) ConfigStatus() map[string]string {
	status := func(v string) string {
		if v == "" {
			return "Not Set"
		}
		return "Set"
	}
	return map[string]string{
		"serviceId":       status(c.ServiceID),
		"templateId":      status(c.ContactTemplateID),
		"orderTemplateId": status(c.OrderTemplateID),
		"publicKey":       status(c.PublicKey),
	}
}

// EmailJSMailer sends templates through the EmailJS REST API.
type EmailJSMailer struct {
	cfg    EmailJSConfig
	client *http.Client
	log    *zap.Logger
}

// NewEmailJSMailer creates an EmailJSMailer with a bounded HTTP timeout.
func NewEmailJSMailer(cfg EmailJSConfig, log *zap.Logger) *EmailJSMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.emailjs.com/api/v1.0/email/send"
	}
	if cfg.ContactRecipientName == "" {
		cfg.ContactRecipientName = "Customer Support"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailJSMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type emailJSRequest struct {
	ServiceID      string      `json:"service_id"`
	TemplateID     string      `json:"template_id"`
	UserID         string      `json:"user_id"`
	AccessToken    string      `json:"accessToken,omitempty"`
	TemplateParams interface{} `json:"template_params"`
}

// ContactTemplateParams are the variables of the contact template.
type ContactTemplateParams struct {
	ToName      string `json:"to_name"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// OrderTemplateLine is one row of the order confirmation table.
type OrderTemplateLine struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Units     int    `json:"units"`
	LineTotal string `json:"line_total"`
	ImageURL  string `json:"image_url"`
}

// OrderTemplateCost is the cost block of the order confirmation.
type OrderTemplateCost struct {
	Subtotal     string `json:"subtotal"`
	Shipping     string `json:"shipping"`
	Tax          string `json:"tax"`
	Total        string `json:"total"`
	FreeShipping bool   `json:"free_shipping"`
}

// OrderTemplateParams are the variables of the order confirmation template.
type OrderTemplateParams struct {
	Email           string              `json:"email"`
	OrderID         string              `json:"order_id"`
	Orders          []OrderTemplateLine `json:"orders"`
	Cost            OrderTemplateCost   `json:"cost"`
	CustomerName    string              `json:"customer_name"`
	ShippingAddress string              `json:"shipping_address"`
	Phone           string              `json:"phone"`
}

// requireCredentials fails before any network call when a credential is blank.
func (m *EmailJSMailer) requireCredentials(templateKey, templateID string) error {
	var missing []string
	if m.cfg.ServiceID == "" {
		missing = append(missing, "EMAILJS_SERVICE_ID")
	}
	if templateID == "" {
		missing = append(missing, templateKey)
	}
	if m.cfg.PublicKey == "" {
		missing = append(missing, "EMAILJS_PUBLIC_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrEmailConfig, strings.Join(missing, ", "))
	}
	return nil
}

// SendContact sends the general contact-form template.
func (m *EmailJSMailer) SendContact(ctx context.Context, msg models.ContactMessage) error {
	if err := m.requireCredentials("EMAILJS_TEMPLATE_ID", m.cfg.ContactTemplateID); err != nil {
		return err
	}
	return m.send(ctx, m.cfg.ContactTemplateID, BuildContactParams(msg, m.cfg.ContactRecipientName))
}

// SendOrderConfirmation sends the order confirmation template.
func (m *EmailJSMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	if err := m.requireCredentials("EMAILJS_ORDER_TEMPLATE_ID", m.cfg.OrderTemplateID); err != nil {
		return err
	}
	return m.send(ctx, m.cfg.OrderTemplateID, BuildOrderParams(order))
}

func (m *EmailJSMailer) send(ctx context.Context, templateID string, params interface{}) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         m.cfg.PublicKey,
		AccessToken:    m.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		m.log.Warn("email provider rejected request",
			zap.String("template_id", templateID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		text := strings.TrimSpace(string(respBody))
		if text == "" {
			text = resp.Status
		}
		return fmt.Errorf("%w %d: %s", ErrEmailProvider, resp.StatusCode, text)
	}

	m.log.Info("email sent", zap.String("template_id", templateID))
	return nil
}

// BuildContactParams fills the contact template.
func BuildContactParams(msg models.ContactMessage, recipient string) ContactTemplateParams {
	subject := msg.Subject
	if subject == "" {
		subject = "Contact Form Submission"
	}
	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}
	return ContactTemplateParams{
		ToName:      recipient,
		FromName:    msg.Name,
		ReplyTo:     msg.Email,
		Subject:     subject,
		Message:     msg.Message,
		PhoneNumber: phone,
		Email:       msg.Email,
	}
}

// BuildOrderParams fills the order confirmation template.
func BuildOrderParams(order models.Order) OrderTemplateParams {
	subtotal := decimal.Zero
	lines := make([]OrderTemplateLine, 0, len(order.Items))
	for _, item := range order.Items {
		price := decimal.NewFromFloat(item.Price)
		lineTotal := price.Mul(decimal.NewFromInt(int64(item.Units)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, OrderTemplateLine{
			Name:      item.Name,
			UnitPrice: formatAmount(price),
			Units:     item.Units,
			LineTotal: formatAmount(lineTotal),
			ImageURL:  item.Image,
		})
	}

	shipping := decimal.NewFromFloat(order.Shipping)
	tax := decimal.NewFromFloat(order.Tax)
	addr := order.ShippingAddress

	return OrderTemplateParams{
		Email:   order.Email,
		OrderID: order.OrderID,
		Orders:  lines,
		Cost: OrderTemplateCost{
			Subtotal:     formatAmount(subtotal),
			Shipping:     formatAmount(shipping),
			Tax:          formatAmount(tax),
			Total:        formatAmount(subtotal.Add(shipping).Add(tax)),
			FreeShipping: shipping.IsZero(),
		},
		CustomerName: addr.FirstName + " " + addr.LastName,
		ShippingAddress: fmt.Sprintf("%s, %s, %s %s, %s",
			addr.Address, addr.City, addr.State, addr.ZipCode, addr.Country),
		Phone: addr.Phone,
	}
}

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders 6720 as "6,720" and 1234.5 as "1,234.5".
func formatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}
