package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/papertrade/ledger/internal/api"
	"github.com/papertrade/ledger/internal/config"
	"github.com/papertrade/ledger/internal/database"
	"github.com/papertrade/ledger/internal/export"
	"github.com/papertrade/ledger/internal/fx"
	"github.com/papertrade/ledger/internal/ledger"
	"github.com/papertrade/ledger/internal/price"
	"github.com/papertrade/ledger/internal/store"
	"github.com/papertrade/ledger/internal/valuation"
	"github.com/papertrade/ledger/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:           "ledgerd",
		Usage:          "virtual trading ledger service",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "write one user's statement workbook and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "account owner", Required: true},
					&cli.StringFlag{Name: "out", Usage: "output path (default statement-<user>.xlsx)"},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// services bundles everything both commands need.
type services struct {
	cfg       config.Config
	accounts  store.Store
	ledger    *ledger.Service
	live      price.Oracle
	oracle    price.Oracle
	converter *fx.Converter
	fxClient  *fx.Client
	valuator  *valuation.Service
	exporter  *export.Service
	cleanup   func()
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	cleanup := func() {}

	var accounts store.Store
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		accounts = store.NewMemory()
	} else {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		cleanup = pool.Close

		migrationsSub, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		accounts = store.NewPostgres(pool)
	}

	coingecko := price.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.BaseCurrency, cfg.CoinGeckoDelay, cfg.CoinGeckoRetryMax)
	stocks := price.NewAlphaVantageClient(cfg.AlphaVantageURL, cfg.AlphaVantageAPIKey, "USD")
	// Trades price against the router directly; only the display and
	// valuation paths read through the cache.
	router := price.NewRouter(coingecko, stocks)
	oracle := price.NewCache(router, cfg.QuoteCacheTTL)

	converter := fx.NewConverter(cfg.BaseCurrency)
	fxClient := fx.NewClient(cfg.FXURL, converter)

	ledgerSvc := ledger.NewService(accounts, cfg.InitialBalance, cfg.Policy())
	valuator := valuation.NewService(oracle, converter, cfg.BaseCurrency, cfg.InitialBalance)

	var writer export.Writer
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsJSON != "" {
		sheetsWriter, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		writer = sheetsWriter
	}
	exporter := export.NewService(ledgerSvc, accounts, writer)

	return &services{
		cfg:       cfg,
		accounts:  accounts,
		ledger:    ledgerSvc,
		live:      router,
		oracle:    oracle,
		converter: converter,
		fxClient:  fxClient,
		valuator:  valuator,
		exporter:  exporter,
		cleanup:   cleanup,
	}, nil
}

func runServe(*cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.cleanup()

	// Workers drive the read path only: they warm the quote cache and
	// refresh FX rates, never ledger state.
	warmer := price.NewWarmer(svcs.oracle, cfg.Watch())
	quoteWorker := worker.NewQuoteWorker(cfg.QuoteWorkerInterval, svcs.fxClient, warmer)
	go quoteWorker.Run(ctx)

	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsJSON != "" {
		statementWorker := worker.NewStatementWorker(svcs.exporter, cfg.StatementWorkerInterval)
		go statementWorker.Run(ctx)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, reset endpoint is unprotected")
	}

	handler := api.NewHandler(svcs.ledger, svcs.valuator, svcs.live, svcs.oracle, svcs.converter, svcs.exporter, cfg.BaseCurrency)
	srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ctx := context.Background()
	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.cleanup()

	userID := c.String("user")
	data, err := svcs.exporter.Statement(ctx, userID)
	if err != nil {
		return fmt.Errorf("building statement for %s: %w", userID, err)
	}

	out := c.String("out")
	if out == "" {
		out = fmt.Sprintf("statement-%s.xlsx", userID)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Printf("Wrote %s", out)
	return nil
}
