package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/faucet"
	"github.com/screwyprof/faucet/journal"
	journalstore "github.com/screwyprof/faucet/journal/store/pgxstore"
	"github.com/screwyprof/faucet/migrator"
	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/pkg/logger"
	"github.com/screwyprof/faucet/pkg/pgxdb"
	"github.com/screwyprof/faucet/token"
	"github.com/screwyprof/faucet/web/config"
	"github.com/screwyprof/faucet/web/handler"
	webstore "github.com/screwyprof/faucet/web/store/pgxstore"
	"github.com/screwyprof/faucet/web/stream"
)

// Subscriber channel buffer for the journal writer and the websocket hub.
// Recording blocks when a subscriber falls this far behind.
const subscriberBuffer = 256

// These values are overridden at build time using -ldflags
var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Load .env when present; deployments configure through the environment
	_ = godotenv.Load()

	// Load configuration
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	// Prepare context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "Faucet service starting",
		slog.String("version", version),
		slog.String("date", date),
	)

	owner := mustAddress(log, "owner", cfg.OwnerAddress)
	admin := mustAddress(log, "admin", cfg.AdminAddress)
	gateAddr := mustAddress(log, "faucet", cfg.FaucetAddress)

	// Initialize database connection
	db, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.ErrorContext(ctx, "Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply migrations
	log.InfoContext(ctx, "Applying database migrations")
	if err := migrator.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
		log.ErrorContext(ctx, "Failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize journal store
	store, storeCloser := journalstore.New(db)
	defer storeCloser()

	// Resume audit sequence numbering after the persisted checkpoint
	lastSeq, err := store.LastSequence(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read journal checkpoint", slog.Any("error", err))
		os.Exit(1)
	}

	auditLog := audit.NewLog(audit.WithStartSequence(lastSeq + 1))

	// Wire the domain: ledger, claim gate and the application service
	ledger := token.NewLedger(owner, auditLog)
	gate := faucet.NewGate(gateAddr, admin, ledger, auditLog)
	if err := ledger.SetMinter(owner, gateAddr); err != nil {
		log.ErrorContext(ctx, "Failed to register the gate as minter", slog.Any("error", err))
		os.Exit(1)
	}
	svc := faucet.NewService(ledger, gate)

	// Start the journal writer persisting the audit trail. The writer and
	// the hub must outlive the signal context: the HTTP server keeps
	// serving claims while it drains, and every entry those claims record
	// still has to reach the store. Both stop when the audit log closes.
	writer := journal.NewWriter(auditLog.Subscribe(subscriberBuffer), store,
		journal.WithBatchSize(cfg.JournalBatchSize),
		journal.WithFlushInterval(cfg.JournalFlushInterval),
	)
	events, writerDone := writer.Start(context.Background())

	subCloser := setupJournalLogging(ctx, events, log)
	defer subCloser()

	// Start the websocket hub streaming audit entries live
	hub := stream.NewHub()
	hubDone := hub.Run(context.Background(), auditLog.Subscribe(subscriberBuffer))

	// Initialize the event history read store
	finder, finderCloser := webstore.New(db)
	defer finderCloser()

	// Create HTTP server
	mux := http.NewServeMux()

	handler.NewFaucetPostClaim(svc).AddRoutes(mux)
	handler.NewFaucetGetAccount(svc).AddRoutes(mux)
	handler.NewFaucetGetStatus(svc).AddRoutes(mux)
	handler.NewFaucetPutPause(svc).AddRoutes(mux)
	handler.NewFaucetGetEvents(finder).AddRoutes(mux)
	mux.Handle("GET /faucet/stream", hub)

	// Wrap with logging middleware
	loggedMux := logger.NewMiddleware(log)(mux)

	// Create server address
	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)

	server := &http.Server{
		Addr:    addr,
		Handler: loggedMux,
	}

	// Start server in a goroutine
	go func() {
		log.InfoContext(ctx, "Server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.InfoContext(ctx, "Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	// Close the audit log so subscriber streams end, then wait for the
	// writer's final flush and the hub to disconnect its clients
	auditLog.Close()
	<-writerDone
	<-hubDone

	log.InfoContext(ctx, "Server exited gracefully")
}

// mustAddress parses a configured address or exits
func mustAddress(log *slog.Logger, role, raw string) ethaddr.Address {
	addr, err := ethaddr.Parse(raw)
	if err != nil {
		log.Error("Invalid address in configuration",
			slog.String("role", role),
			slog.String("address", raw),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
	return addr
}

// setupJournalLogging configures writer event handlers using slog directly
func setupJournalLogging(ctx context.Context, events <-chan journal.Event, log *slog.Logger) func() {
	return journal.NewSubscriber(events,
		journal.OnWriterStarted(func(event journal.WriterStarted) {
			log.InfoContext(ctx, "Journal writer started",
				slog.Int("batchSize", event.BatchSize),
				slog.Duration("flushInterval", event.FlushInterval),
			)
		}),
		journal.OnFlushCompleted(func(event journal.FlushCompleted) {
			log.InfoContext(ctx, "Journal batch persisted",
				slog.Int("count", event.Count),
				slog.Uint64("lastSequence", event.LastSequence),
			)
		}),
		journal.OnWriterError(func(event journal.WriterError) {
			log.ErrorContext(ctx, "Journal flush failed", slog.Any("error", event.Err))
		}),
		journal.OnWriterShutdown(func(event journal.WriterShutdown) {
			if event.Reason != nil {
				log.InfoContext(ctx, "Journal writer stopped",
					slog.String("reason", event.Reason.Error()),
				)
				return
			}
			log.InfoContext(ctx, "Journal writer stopped gracefully")
		}),
	)
}
