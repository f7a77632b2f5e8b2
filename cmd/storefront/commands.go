package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/internal/checkout"
	"github.com/freshbowl/storefront/internal/handoff"
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/freshbowl/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return handoff.FormatAmount(enums.CurrencyINR, d)
}

type productsCmd struct {
	Category     string `help:"Only show this category (fruit, bowl, juice, salad, dry_fruit, combo)."`
	Customizable bool   `help:"Only show customizable bowls."`
	Search       string `help:"Match product names containing this text."`
}

func (c *productsCmd) Run(ctx context.Context, a *app) error {
	filter := catalog.Filter{Search: c.Search}
	if c.Category != "" {
		category, err := enums.ParseProductCategory(c.Category)
		if err != nil {
			return err
		}
		filter.Category = category
	}
	if c.Customizable {
		yes := true
		filter.Customizable = &yes
	}
	products, err := a.catalog.FetchProducts(ctx, filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tNOTES")
	for _, p := range products {
		var notes []string
		if p.IsCustomizable {
			notes = append(notes, fmt.Sprintf("pick up to %d add-ons", p.MaxSubProducts))
		}
		if p.HasSubscription {
			notes = append(notes, "subscription")
		}
		if !p.InStock() {
			notes = append(notes, "out of stock")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, money(p.UnitPrice), p.Stock, strings.Join(notes, ", "))
	}
	return w.Flush()
}

type addCmd struct {
	Product string `arg:"" help:"Product id."`
	Qty     int    `help:"Quantity to add." default:"1"`
}

func (c *addCmd) Run(ctx context.Context, a *app) error {
	snap, err := a.carts.AddProduct(ctx, a.cartID, c.Product, c.Qty)
	if err != nil {
		return err
	}
	return printCart(a, snap)
}

type customizeCmd struct {
	Product string   `arg:"" help:"Customizable bowl id."`
	Fruits  []string `arg:"" help:"Add-on fruit ids."`
}

func (c *customizeCmd) Run(ctx context.Context, a *app) error {
	snap, err := a.carts.AddCustomized(ctx, a.cartID, c.Product, c.Fruits)
	if err != nil {
		return err
	}
	return printCart(a, snap)
}

type setCmd struct {
	Item string `arg:"" help:"Cart line id."`
	Qty  int    `arg:"" help:"New quantity."`
}

func (c *setCmd) Run(ctx context.Context, a *app) error {
	snap, err := a.carts.SetQuantity(ctx, a.cartID, c.Item, c.Qty)
	if err != nil {
		return err
	}
	return printCart(a, snap)
}

type removeCmd struct {
	Item string `arg:"" help:"Cart line id."`
}

func (c *removeCmd) Run(ctx context.Context, a *app) error {
	snap, err := a.carts.Remove(ctx, a.cartID, c.Item)
	if err != nil {
		return err
	}
	return printCart(a, snap)
}

type showCmd struct{}

func (c *showCmd) Run(ctx context.Context, a *app) error {
	snap, err := a.carts.Snapshot(ctx, a.cartID)
	if err != nil {
		return err
	}
	return printCart(a, snap)
}

type clearCmd struct{}

func (c *clearCmd) Run(ctx context.Context, a *app) error {
	snap, err := a.carts.Clear(ctx, a.cartID)
	if err != nil {
		return err
	}
	return printCart(a, snap)
}

type checkoutCmd struct {
	Name       string `help:"Full name."`
	FirstName  string `help:"First name, used when --name is empty."`
	LastName   string `help:"Last name."`
	Email      string `help:"Email address."`
	Phone      string `help:"Contact phone number."`
	Line1      string `help:"Address line 1."`
	Line2      string `help:"Address line 2."`
	Landmark   string `help:"Nearby landmark."`
	City       string `help:"City."`
	State      string `help:"State."`
	PostalCode string `help:"6 digit PIN code."`
	Notes      string `help:"Delivery notes."`

	Open         bool   `help:"Open the messaging app instead of printing the link."`
	Clear        bool   `help:"Empty the cart once the order is handed off."`
	OrderPhone   string `help:"Business number orders are sent to." env:"STOREFRONT_STORE_ORDER_PHONE" required:""`
	BusinessName string `help:"Business name shown in the message." env:"STOREFRONT_STORE_BUSINESS_NAME" default:"Fresh Bowl"`
	Host         string `help:"Messaging deep-link host." env:"STOREFRONT_STORE_MESSAGING_HOST" default:"wa.me"`
}

func (c *checkoutCmd) customer() handoff.Customer {
	return handoff.Customer{
		Name:      c.Name,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address: types.Address{
			Line1:      c.Line1,
			Line2:      c.Line2,
			Landmark:   c.Landmark,
			City:       c.City,
			State:      c.State,
			PostalCode: c.PostalCode,
		},
		Notes: c.Notes,
	}
}

func (c *checkoutCmd) strategies(a *app) []handoff.Strategy {
	if c.Open {
		return handoff.DesktopStrategies(a.out, handoff.StartDetached)
	}
	return []handoff.Strategy{handoff.NewWriterStrategy(a.out, "")}
}

func (c *checkoutCmd) Run(ctx context.Context, a *app) error {
	svc, err := checkout.NewService(checkout.Params{
		Config: checkout.Config{
			DestinationPhone:  c.OrderPhone,
			MessagingHost:     c.Host,
			ClearAfterHandoff: c.Clear,
		},
		Carts: a.carts,
		Encoder: handoff.NewEncoder(handoff.EncoderConfig{
			BusinessName: c.BusinessName,
			ChannelName:  c.BusinessName + " CLI",
		}),
		Dispatcher: handoff.NewDispatcher(a.logg, nil, c.strategies(a)...),
		Notifier:   a.tray,
		Logger:     a.logg,
	})
	if err != nil {
		return err
	}

	res, err := svc.Checkout(ctx, a.cartID, c.customer())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s\n\nSent via %s (%s order, total %s)\n", res.Message, res.Strategy, res.OrderKind, money(res.Total))
	return nil
}

func printCart(a *app, snap cart.Snapshot) error {
	if snap.IsEmpty() {
		_, err := fmt.Fprintln(a.out, "Your cart is empty.")
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range snap.Items {
		ln := item.Details()
		name := ln.Name
		if composed, ok := item.(*cart.Composed); ok {
			picks := make([]string, 0, len(composed.Customization.Selections))
			for _, sel := range composed.Customization.Selections {
				picks = append(picks, sel.FruitName)
			}
			name += " [" + strings.Join(picks, ", ") + "]"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", ln.ID, name, ln.Quantity, money(ln.UnitPrice), money(ln.Subtotal()))
	}
	fmt.Fprintf(w, "\t\t%d\t\t%s\n", snap.TotalItemCount, money(snap.TotalAmount))
	return w.Flush()
}
