package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/veldt-labs/minutex/internal/api/handlers"
	"github.com/veldt-labs/minutex/internal/config"
	"github.com/veldt-labs/minutex/internal/database"
	"github.com/veldt-labs/minutex/internal/extract"
	"github.com/veldt-labs/minutex/internal/jobs"
	"github.com/veldt-labs/minutex/internal/openai"
	"github.com/veldt-labs/minutex/internal/repository"
	"github.com/veldt-labs/minutex/internal/server"
	"github.com/veldt-labs/minutex/internal/service"
	"github.com/veldt-labs/minutex/internal/storage"
	"github.com/veldt-labs/minutex/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the minutex API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("MINUTEX_OPENAI_API_KEY is required")
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)
	eventRepo := repository.NewIngestEventRepository(pool)

	var archive *storage.DocumentArchive
	if cfg.HasS3() {
		archive, err = storage.NewDocumentArchive(ctx, storage.ArchiveConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create document archive: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure archive bucket: %w", err)
		}
		log.Printf("archive bucket '%s' ready", cfg.S3Bucket)
	}

	embeddingClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaiapi.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	registry := extract.NewRegistry()

	// Events are only recorded when a webhook is configured to consume
	// them, so the table never fills with undeliverable rows.
	var ingestEvents service.IngestEventRepository
	var notifyWorker *jobs.Worker
	if cfg.HasWebhook() {
		ingestEvents = eventRepo
		notifyProcessor := jobs.NewNotifyWorker(eventRepo, cfg.WebhookURL)
		notifyWorker = jobs.NewWorker(notifyProcessor, 10*time.Second)
		go notifyWorker.Start(ctx)
		log.Println("webhook notify worker started")
	}

	var archiver service.DocumentArchiver
	var archiveURLs service.MeetingArchive
	if archive != nil {
		archiver = archive
		archiveURLs = archive
	}

	ingestSvc := service.NewIngestServiceWithConfig(registry, embeddingClient, chunkRepo, ingestEvents, archiver, service.IngestConfig{
		MaxWords:     cfg.ChunkMaxWords,
		EmbedWorkers: cfg.EmbedWorkers,
		Timeout:      cfg.IngestTimeout,
	})
	querySvc := service.NewQueryServiceWithConfig(embeddingClient, chunkRepo, service.QueryConfig{
		K:             cfg.SearchK,
		CandidatePool: cfg.SearchCandidatePool,
		Timeout:       cfg.QueryTimeout,
	})

	var meetingSvc *service.MeetingService
	if archiveURLs != nil {
		meetingSvc = service.NewMeetingServiceWithArchive(chunkRepo, archiveURLs)
	} else {
		meetingSvc = service.NewMeetingService(chunkRepo)
	}

	routerCfg := server.RouterConfig{
		IngestHandler:  handlers.NewIngestHandler(ingestSvc),
		QueryHandler:   handlers.NewQueryHandler(querySvc),
		MeetingHandler: handlers.NewMeetingHandler(meetingSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if notifyWorker != nil {
		notifyWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql connection
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
