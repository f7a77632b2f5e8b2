package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/freshbowl/storefront/internal/bootstrap"
	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/internal/customization"
	"github.com/freshbowl/storefront/internal/notifications"
	"github.com/freshbowl/storefront/pkg/logger"
)

type CLI struct {
	CartDir  string `help:"Directory holding cart snapshots." env:"STOREFRONT_CART_FILE_DIR" default:".storefront/carts" type:"path"`
	CartID   string `help:"Cart to operate on." env:"STOREFRONT_CART_ID" default:"default"`
	Catalog  string `help:"Catalog seed file. The built-in catalog is used when it does not exist." env:"STOREFRONT_CATALOG_SEED_PATH" default:"catalog.toml" type:"path"`
	LogLevel string `help:"Log level." env:"STOREFRONT_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error"`

	Products  productsCmd  `cmd:"" help:"List catalog products."`
	Add       addCmd       `cmd:"" help:"Add a product to the cart."`
	Customize customizeCmd `cmd:"" help:"Build a customized bowl from add-ons and add it to the cart."`
	Set       setCmd       `cmd:"" help:"Set the quantity of a cart line. Zero removes it."`
	Remove    removeCmd    `cmd:"" help:"Remove a cart line."`
	Show      showCmd      `cmd:"" help:"Show the cart."`
	Clear     clearCmd     `cmd:"" help:"Empty the cart."`
	Checkout  checkoutCmd  `cmd:"" help:"Encode the cart as an order message and hand it to the messaging app."`
}

// app is bound into every command's Run method.
type app struct {
	cartID  string
	catalog catalog.Catalog
	carts   *cart.Service
	tray    *notifications.Service
	logg    *logger.Logger
	out     io.Writer
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("storefront"),
		kong.Description("Fresh Bowl storefront: browse, fill a cart and send the order."),
		kong.UsageOnError(),
		kong.HelpOptions{Compact: true},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cli, os.Stdout, os.Stderr)
	kctx.FatalIfErrorf(err)
	defer a.tray.Stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.FatalIfErrorf(kctx.Run(a))
}

func newApp(ctx context.Context, cli CLI, out, notices io.Writer) (*app, error) {
	logg := logger.New(logger.Options{
		ServiceName: "storefront-cli",
		Level:       logger.ParseLevel(cli.LogLevel),
		Output:      notices,
	})

	cat, err := bootstrap.LoadCatalog(ctx, cli.Catalog, logg)
	if err != nil {
		return nil, err
	}
	store, err := cart.NewFileStore(cli.CartDir)
	if err != nil {
		return nil, err
	}

	tray := notifications.NewService(0, logg)
	tray.Subscribe(func(n notifications.Notification) {
		fmt.Fprintf(notices, "[%s] %s\n", n.Severity, n.Message)
	})

	carts, err := cart.NewService(cart.ServiceParams{
		Catalog:  cat,
		Composer: customization.NewResolver(customization.UUIDGenerator{}),
		Mirror:   cart.NewMirror(store, logg),
		Notifier: tray,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cartID:  cli.CartID,
		catalog: cat,
		carts:   carts,
		tray:    tray,
		logg:    logg,
		out:     out,
	}, nil
}
