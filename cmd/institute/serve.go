package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/institute-portal/internal/admission"
	"github.com/jonathan/institute-portal/internal/assist"
	"github.com/jonathan/institute-portal/internal/catalog"
	"github.com/jonathan/institute-portal/internal/chat"
	"github.com/jonathan/institute-portal/internal/config"
	"github.com/jonathan/institute-portal/internal/db"
	"github.com/jonathan/institute-portal/internal/docstore"
	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/knowledge"
	"github.com/jonathan/institute-portal/internal/leads"
	"github.com/jonathan/institute-portal/internal/logging"
	"github.com/jonathan/institute-portal/internal/payment"
	"github.com/jonathan/institute-portal/internal/resume"
	"github.com/jonathan/institute-portal/internal/server"
	"github.com/jonathan/institute-portal/internal/server/middleware"
	"github.com/jonathan/institute-portal/internal/server/ratelimit"
	"github.com/jonathan/institute-portal/internal/session"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server for the chatbot, résumé composer, courses, payments and admissions.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply the database schema on startup when DATABASE_URL is set")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat)})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	defer app.close()
	if err != nil {
		return err
	}

	return app.server.Run(ctx)
}

// app holds the wired server and everything that needs closing on shutdown.
type app struct {
	server  *server.Server
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{}

	kb, err := loadKnowledge(cfg.KnowledgeBasePath)
	if err != nil {
		return a, err
	}
	courses, err := catalog.Default()
	if err != nil {
		return a, err
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return a, err
		}
		a.closers = append(a.closers, database.Close)
		if serveMigrate {
			if err := database.Migrate(ctx); err != nil {
				return a, err
			}
		}
		logger.Info("connected to postgres")
	}

	sink, err := buildLeadSink(cfg, database, logger)
	if err != nil {
		return a, err
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func() { _ = closer.Close() })
	}

	var recorder enrollment.Recorder
	if cfg.MongoURI != "" {
		store, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return a, err
		}
		a.closers = append(a.closers, func() { _ = store.Close(context.Background()) })
		recorder = store
		logger.WithField("database", cfg.MongoDatabase).Info("connected to mongodb")
	} else {
		logger.Warn("MONGODB_URI not set, enrollments are kept in memory")
		recorder = enrollment.NewMemoryRecorder()
	}
	enroll := enrollment.NewService(courses, recorder, logging.Component(logger, "enrollment"))

	var orders payment.Repository = payment.NewMemoryRepository()
	var applications admission.Repository
	if database != nil {
		orders = database
		applications = database
	}
	payments := payment.NewService(
		payment.SimulatedGateway{Delay: cfg.PaymentDelay},
		orders,
		enroll,
		logging.Component(logger, "payment"),
	)

	var blobs admission.BlobStore
	if cfg.StorageEnabled() {
		blobs, err = admission.NewS3Store(ctx, admission.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return a, err
		}
	} else {
		logger.Warn("S3_BUCKET not set, admission documents are kept in memory")
		blobs = admission.NewMemoryStore()
	}

	var generator assist.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := assist.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return a, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		generator = client
	}

	var auth middleware.TokenValidator
	if verifier := middleware.NewJWTVerifier(cfg.Identity); verifier != nil {
		auth = verifier
	} else {
		logger.Warn("IDENTITY_JWT_SECRET not set, authenticated routes will reject every request")
	}

	sessionOpts := session.Options{TTL: cfg.SessionTTL, CleanupInterval: cfg.SessionCleanupInterval}
	conversations := session.NewStore[chat.Conversation](sessionOpts)
	drafts := session.NewStore[resume.Draft](sessionOpts)
	a.closers = append(a.closers, conversations.Stop, drafts.Stop)

	a.server = server.New(server.Config{
		Port:            cfg.Port,
		AllowedOrigins:  cfg.AllowedOrigins,
		ShutdownTimeout: cfg.ShutdownTimeout,
		RateLimit:       rateLimitConfig(cfg.RateLimit),
		Auth:            auth,
		Currency:        cfg.PaymentCurrency,
		Logger:          logger,
	}, server.Services{
		Chat: chat.NewService(
			chat.NewEngine(kb, chat.WithPageSize(cfg.PromptPageSize)),
			conversations,
			sink,
			logging.Component(logger, "chat"),
		),
		Resumes: resume.NewService(
			drafts,
			resume.ChromeExporter{Timeout: cfg.ChromeTimeout},
			logging.Component(logger, "resume"),
		),
		Courses:    courses,
		Enrollment: enroll,
		Payments:   payments,
		Admissions: admission.NewService(blobs, applications, logging.Component(logger, "admission")),
		Assist:     assist.NewService(generator, logging.Component(logger, "assist")),
	})
	a.closers = append(a.closers, a.server.Close)

	return a, nil
}

func loadKnowledge(path string) (*knowledge.Base, error) {
	if path == "" {
		return knowledge.Default()
	}
	return knowledge.LoadFile(path)
}

// buildLeadSink combines the configured lead sinks. database is nil when DATABASE_URL is unset,
// which config validation already rejects for the postgres sink.
func buildLeadSink(cfg *config.Config, database *db.DB, logger logrus.FieldLogger) (leads.Sink, error) {
	var sinks leads.Multi
	for _, name := range cfg.LeadSinks {
		switch name {
		case "log":
			sinks = append(sinks, leads.NewLogSink(logging.Component(logger, "leads")))
		case "postgres":
			if database == nil {
				return nil, fmt.Errorf("lead sink 'postgres' requires DATABASE_URL")
			}
			sinks = append(sinks, leads.NewPostgresSink(database))
		case "amqp":
			publisher, err := leads.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, publisher)
		default:
			return nil, fmt.Errorf("unknown lead sink %q", name)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return closingMulti(sinks), nil
}

// closingMulti is a Multi that also closes the sinks that need it.
type closingMulti leads.Multi

func (m closingMulti) Deliver(ctx context.Context, lead leads.Lead) error {
	return leads.Multi(m).Deliver(ctx, lead)
}

func (m closingMulti) Close() error {
	for _, sink := range m {
		if closer, ok := sink.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	return nil
}

func rateLimitConfig(rl config.RateLimitConfig) ratelimit.Config {
	return ratelimit.Config{
		Enabled:         rl.Enabled,
		DefaultLimit:    rl.DefaultLimit,
		DefaultWindow:   rl.DefaultWindow,
		CleanupInterval: rl.CleanupInterval,
		Allow:           toSet(rl.Allowlist),
		Deny:            toSet(rl.Denylist),
		Routes:          ratelimit.DefaultRoutes(),
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
