package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/parampare/storefront/internal/app"
	"github.com/parampare/storefront/internal/config"
	"github.com/parampare/storefront/pkg/logger"
	"github.com/parampare/storefront/pkg/tracing"
)

var cli struct {
	Login    loginCmd    `cmd:"" help:"Log in to your account."`
	Logout   logoutCmd   `cmd:"" help:"Log out and clear the local session."`
	Register registerCmd `cmd:"" help:"Create a new account."`

	Products   productsCmd   `cmd:"" help:"Browse the catalog."`
	Product    productCmd    `cmd:"" help:"Show a single product."`
	Categories categoriesCmd `cmd:"" help:"List categories."`

	Cart     cartCmd     `cmd:"" help:"Manage the shopping cart."`
	Wishlist wishlistCmd `cmd:"" help:"Manage the wishlist."`

	Address  addressCmd  `cmd:"" help:"Manage saved addresses."`
	Checkout checkoutCmd `cmd:"" help:"Place an order from the current cart."`
	Orders   ordersCmd   `cmd:"" help:"Show order history."`

	Watch watchCmd `cmd:"" help:"Run the background reconciler (and debug listener, if configured)."`
}

// cliContext carries the wired application into command Run methods.
type cliContext struct {
	ctx context.Context
	app *app.App
	log *slog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("storefront", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Error("failed to init tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	kctx := kong.Parse(&cli,
		kong.Name("storefront"),
		kong.Description("Parampare storefront client."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cliContext{ctx: ctx, app: application, log: log}))
}
