package services

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// PricingConfig holds the shipping and tax rules.
type PricingConfig struct {
	FreeShippingThreshold float64
	FlatShippingFee       float64
	TaxRate               float64
}

// Pricer turns cart lines into a cost breakdown.
type Pricer struct {
	threshold decimal.Decimal
	fee       decimal.Decimal
	taxRate   decimal.Decimal
}

// NewPricer creates a Pricer.
func NewPricer(cfg PricingConfig) *Pricer {
	return &Pricer{
		threshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
		fee:       decimal.NewFromFloat(cfg.FlatShippingFee),
		taxRate:   decimal.NewFromFloat(cfg.TaxRate),
	}
}

// Quote prices lines. Shipping is waived once the subtotal is strictly above
// the threshold; tax is charged on the subtotal only.
func (p *Pricer) Quote(lines []models.CartLine) models.PriceBreakdown {
	subtotal := subtotalOf(lines).Round(2)

	shipping := p.fee
	free := subtotal.GreaterThan(p.threshold)
	if free {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(p.taxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax)

	remaining := decimal.Zero
	if !free {
		remaining = p.threshold.Sub(subtotal)
	}

	return models.PriceBreakdown{
		Subtotal:              subtotal.InexactFloat64(),
		Shipping:              shipping.InexactFloat64(),
		Tax:                   tax.InexactFloat64(),
		Total:                 total.InexactFloat64(),
		FreeShipping:          free,
		FreeShippingRemaining: remaining.InexactFloat64(),
	}
}
