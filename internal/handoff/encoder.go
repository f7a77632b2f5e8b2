package handoff

import (
	"fmt"
	"strings"

	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// EncoderConfig names the business on both ends of the message.
type EncoderConfig struct {
	BusinessName string
	ChannelName  string
	Currency     enums.Currency
}

// Encoder renders a cart snapshot into the order message. Encode is pure:
// the same snapshot and customer always produce the same text.
type Encoder struct {
	cfg EncoderConfig
}

func NewEncoder(cfg EncoderConfig) *Encoder {
	if cfg.BusinessName == "" {
		cfg.BusinessName = "Fresh Bowl"
	}
	if cfg.ChannelName == "" {
		cfg.ChannelName = cfg.BusinessName + " Website"
	}
	if !cfg.Currency.IsValid() {
		cfg.Currency = enums.CurrencyINR
	}
	return &Encoder{cfg: cfg}
}

// FormatAmount renders an amount with the currency symbol and two decimals.
// This is the only place amounts get rounded.
func FormatAmount(currency enums.Currency, amount decimal.Decimal) string {
	return currency.Symbol() + amount.StringFixed(2)
}

// Encode builds the message. The template is chosen once for the whole
// order: subscription when any line item carries a subscription.
func (e *Encoder) Encode(snap cart.Snapshot, customer Customer) string {
	kind := snap.OrderKind()
	sections := []string{
		e.header(kind),
		e.customerBlock(customer),
		e.itemsBlock(snap, kind),
		e.summaryBlock(snap),
		e.paymentBlock(kind),
	}
	if kind == enums.OrderKindSubscription {
		sections = append(sections, e.cadenceBlock(), e.nextStepsBlock())
	}
	sections = append(sections, e.addressBlock(customer))
	if notes := strings.TrimSpace(customer.Notes); notes != "" {
		sections = append(sections, "*Notes*\n"+notes)
	}
	sections = append(sections, e.footer())
	return strings.Join(sections, "\n\n")
}

func (e *Encoder) money(d decimal.Decimal) string {
	return FormatAmount(e.cfg.Currency, d)
}

func (e *Encoder) header(kind enums.OrderKind) string {
	if kind == enums.OrderKindSubscription {
		return fmt.Sprintf("*New Subscription Order - %s*", e.cfg.BusinessName)
	}
	return fmt.Sprintf("*New Order - %s*", e.cfg.BusinessName)
}

func (e *Encoder) customerBlock(c Customer) string {
	return strings.Join([]string{
		"*Customer Details*",
		"Name: " + c.DisplayName(),
		"Email: " + orPlaceholder(c.Email),
		"Phone: " + orPlaceholder(c.Phone),
	}, "\n")
}

func (e *Encoder) itemsBlock(snap cart.Snapshot, kind enums.OrderKind) string {
	var b strings.Builder
	b.WriteString("*Order Items*")
	for i, item := range snap.Items {
		ln := item.Details()
		name := ln.Name
		if ln.HasSubscription {
			name += " (Subscription)"
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, name)
		fmt.Fprintf(&b, "\n   Quantity: %d", ln.Quantity)
		if kind == enums.OrderKindSubscription {
			fmt.Fprintf(&b, "\n   Price: %s (total subscription)", e.money(ln.Subtotal()))
		} else {
			fmt.Fprintf(&b, "\n   Price: %s each", e.money(ln.UnitPrice))
		}
		if composed, ok := item.(*cart.Composed); ok {
			b.WriteString("\n   Add-ons:")
			for _, sel := range composed.Customization.Selections {
				fmt.Fprintf(&b, "\n   • %s", sel.FruitName)
			}
		}
		fmt.Fprintf(&b, "\n   Subtotal: %s", e.money(ln.Subtotal()))
	}
	return b.String()
}

func (e *Encoder) summaryBlock(snap cart.Snapshot) string {
	subtotal := decimal.Zero
	for _, item := range snap.Items {
		subtotal = subtotal.Add(item.Details().Subtotal())
	}
	return strings.Join([]string{
		"*Order Summary*",
		"Subtotal: " + e.money(subtotal),
		"Shipping: " + e.money(decimal.Zero),
		"Total: " + e.money(subtotal),
	}, "\n")
}

func (e *Encoder) paymentBlock(kind enums.OrderKind) string {
	lines := []string{"*Payment Options*"}
	for _, method := range enums.PaymentMethods() {
		lines = append(lines, "- "+method.Label())
	}
	if kind == enums.OrderKindSubscription {
		lines = append(lines, "Subscription payments are collected in advance for the full plan. We will share payment details once your schedule is confirmed.")
	} else {
		lines = append(lines, "Pay on delivery or transfer before dispatch. We will confirm the amount when we accept your order.")
	}
	return strings.Join(lines, "\n")
}

func (e *Encoder) cadenceBlock() string {
	return strings.Join([]string{
		"*Delivery Schedule*",
		"Deliveries follow the plan you picked. We will confirm your preferred days and time slot on this chat.",
	}, "\n")
}

func (e *Encoder) nextStepsBlock() string {
	return strings.Join([]string{
		"*Next Steps*",
		"1. We confirm your delivery schedule",
		"2. You complete the subscription payment",
		"3. Your first delivery is dispatched",
	}, "\n")
}

func (e *Encoder) addressBlock(c Customer) string {
	if !c.Address.IsComplete() {
		return "*Delivery Address*\nPlease provide your complete delivery address."
	}
	return "*Delivery Address*\n" + strings.Join(c.Address.Lines(), "\n")
}

func (e *Encoder) footer() string {
	return "_Sent from " + e.cfg.ChannelName + "_"
}
