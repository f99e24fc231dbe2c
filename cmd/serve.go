package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swiftline-carrier/driver-notify/internal/api"
	"github.com/swiftline-carrier/driver-notify/internal/build"
	"github.com/swiftline-carrier/driver-notify/internal/config"
	"github.com/swiftline-carrier/driver-notify/internal/eventbus"
	"github.com/swiftline-carrier/driver-notify/internal/logger"
	"github.com/swiftline-carrier/driver-notify/internal/metrics"
	"github.com/swiftline-carrier/driver-notify/internal/notification"
	"github.com/swiftline-carrier/driver-notify/internal/scheduler"
	"github.com/swiftline-carrier/driver-notify/internal/server"
	"github.com/swiftline-carrier/driver-notify/internal/storage"
	"github.com/swiftline-carrier/driver-notify/internal/trigger"
)

// NewServeCmd returns the "serve" subcommand that runs the event trigger.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int
	var noBanner bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for new driver documents and send welcome emails",
		Long: `Start the HTTP trigger that receives driver document-created events at
POST ` + server.EventsPath + `. When MONGO_URI is set, inserts into the drivers
collection are watched as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if !noBanner {
				printBanner(cmd.OutOrStdout(), cfg)
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP port (overrides PORT env var)")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "Do not print the startup banner")
	return cmd
}

func runServe(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir, cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	sysLogger.Info("driver-notify starting",
		slog.Int("port", cfg.Port),
		slog.String("smtp_host", cfg.SMTPHost),
		slog.Int("smtp_port", cfg.SMTPPort),
		slog.Bool("mongo_watcher", cfg.MongoEnabled()),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
	)
	if cfg.SenderEmail == "" || cfg.SenderPassword == "" {
		sysLogger.Warn("SENDER_EMAIL or SENDER_PASSWORD not set; welcome emails will be skipped")
	}

	db, _, err := storage.NewSQLiteDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening delivery log: %w", err)
	}
	defer func() { _ = db.Close() }()
	deliveries := storage.NewSQLiteDeliveryStore(db)

	m := metrics.New()
	mailer, _ := newMailer(cfg)
	welcome := notification.NewWelcomeHandler(mailer, sysLogger,
		notification.WithDeliveryStore(deliveries),
		notification.WithMetrics(m),
	)

	retention, err := scheduler.New(scheduler.Config{
		Store:     deliveries,
		Retention: cfg.DeliveryLogRetention,
		Logger:    sysLogger,
	})
	if err != nil {
		return err
	}
	if err := retention.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = retention.Stop() }()

	bus := eventbus.New(cfg.EventWorkers, sysLogger)
	// Queued events are drained on shutdown, so they must outlive ctx.
	busCtx := context.WithoutCancel(ctx)
	bus.Subscribe(func(e eventbus.Event) {
		if err := welcome.Handle(busCtx, e.Driver); err != nil {
			sysLogger.Error("driver event handler failed",
				slog.String("event_id", e.Driver.ID),
				slog.String("document", e.Driver.Path),
				slog.Any("error", err))
		}
	})
	defer bus.Close()

	var watcherDone <-chan struct{}
	if cfg.MongoEnabled() {
		watcherDone, err = startMongoWatcher(ctx, cfg, bus, sysLogger)
		if err != nil {
			return err
		}
	}

	srv := server.New(server.Config{
		Port:    cfg.Port,
		Trigger: trigger.NewHTTPTrigger(welcome, sysLogger),
		Metrics: m.Handler(),
		API:     api.New(deliveries, sysLogger),
		Logger:  sysLogger,
	})
	sysLogger.Info("server ready", slog.String("events", server.EventsPath))
	runErr := srv.Run(ctx)

	// Stop publishers before the bus is closed.
	cancel()
	if watcherDone != nil {
		<-watcherDone
	}
	return runErr
}

// startMongoWatcher connects to MongoDB and watches the drivers collection in
// the background until ctx is canceled. The returned channel is closed once
// the watcher has stopped.
func startMongoWatcher(ctx context.Context, cfg *config.AppConfig, bus eventbus.EventBus, log *slog.Logger) (<-chan struct{}, error) {
	client, err := trigger.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	coll := client.Database(cfg.MongoDatabase).Collection(cfg.DriversCollection)
	watcher := trigger.NewMongoWatcher(coll, bus, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()
		if err := watcher.Run(ctx); err != nil {
			log.Error("mongo watcher stopped", slog.Any("error", err))
		}
	}()
	return done, nil
}
