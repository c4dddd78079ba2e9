package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/revise/internal/config"
	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/excel"
	"github.com/example/revise/internal/handlers"
	"github.com/example/revise/internal/logger"
	"github.com/example/revise/internal/notify"
	"github.com/example/revise/internal/reminder"
	"github.com/example/revise/internal/scheduling"
	"github.com/example/revise/internal/server"
	"github.com/example/revise/internal/session"
)

func main() {
	importPath := flag.String("import", "", "Import cards from an .xlsx or .csv file and exit")
	importUser := flag.Int64("user", 0, "User id to import cards for (with -import)")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dsn := cfg.DatabaseURL
	if cfg.DBType == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := database.Connect(cfg.DBType, dsn)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	cards := database.NewCardRepository(db)
	events := database.NewReviewEventRepository(db)
	users := database.NewUserRepository(db)

	if *importPath != "" {
		runImport(log, cards, *importPath, *importUser)
		return
	}

	controller := session.NewController(log, cards, events, scheduling.NewSM2())

	router := server.NewRouter(server.RouterConfig{
		ReviewHandler: handlers.NewReviewHandler(log, controller, users, nil),
		CardHandler:   handlers.NewCardHandler(log, cards),
	})

	// Reminders run only when a Telegram token is configured.
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(log, cfg.TelegramToken)
		if err != nil {
			log.Fatal("failed to create telegram notifier", "error", err)
		}
		reminders := reminder.New(log, users, cards, notifier,
			cfg.NotificationStartHour, cfg.NotificationEndHour)
		reminders.Start()
		defer reminders.Stop()
		log.Info("reminder scheduler started",
			"window_start", cfg.NotificationStartHour,
			"window_end", cfg.NotificationEndHour,
		)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server stopped")
}

func runImport(log *logger.Logger, cards database.CardRepository, path string, userID int64) {
	if userID == 0 {
		log.Fatal("-user is required with -import")
	}
	importer := excel.NewImporter(cards)
	result, err := importer.ImportCards(context.Background(), excel.DefaultImportConfig(path), userID, time.Now().UTC())
	if err != nil {
		log.Fatal("import failed", "error", err)
	}
	log.Info("import finished",
		"processed", result.TotalProcessed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	for _, e := range result.Errors {
		log.Warn("import row error", "detail", e)
	}
}
