// @title                      Field Pilot API
// @version                    1.0
// @description                Multi-tenant field service backend: jobs, proposals, incidents and work sessions.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "fieldpilot/docs"
	"fieldpilot/internal/auth/firebase"
	"fieldpilot/internal/cache"
	"fieldpilot/internal/config"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/drafter/claude"
	"fieldpilot/internal/drafter/endpoint"
	"fieldpilot/internal/drafter/gemini"
	"fieldpilot/internal/drafter/ollama"
	"fieldpilot/internal/drafter/openai"
	"fieldpilot/internal/email/noop"
	"fieldpilot/internal/email/ses"
	"fieldpilot/internal/handler"
	"fieldpilot/internal/middleware"
	"fieldpilot/internal/port"
	"fieldpilot/internal/repository"
	"fieldpilot/internal/router"
	"fieldpilot/internal/service"
	"fieldpilot/internal/session"
	s3storage "fieldpilot/internal/storage/s3"
	"fieldpilot/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	// Identity
	identityApp, err := firebase.NewApp(ctx, cfg.Identity.ProjectID, cfg.Identity.CredentialsFile)
	if err != nil {
		return err
	}
	identity, err := firebase.NewIdentityProvider(ctx, identityApp)
	if err != nil {
		return err
	}

	// Redis backs the dashboard cache and refresh sessions when configured
	var (
		dashCache port.Cache        = cache.Noop{}
		sessions  port.SessionStore = session.NewMemoryStore()
	)
	if cfg.Redis.URL != "" {
		rdb, err := cache.OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		dashCache = cache.NewRedisCache(rdb, "fieldpilot:dashboard:")
		sessions = session.NewRedisStore(rdb)
		log.Println("Redis enabled for dashboard cache and sessions")
	} else {
		log.Println("WARNING: redis not configured, using in-memory sessions and no dashboard cache")
	}

	// Storage
	media, err := s3storage.NewMediaStore(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	emailSender, err := newEmailSender(ctx, &cfg.Email)
	if err != nil {
		return err
	}

	registry, err := validator.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}
	specsValidator := validator.New(registry)

	registerDrafters()
	draftChain, err := drafter.BuildChain(&cfg.Drafter)
	if err != nil {
		log.Printf("WARNING: AI drafting disabled: %v", err)
		draftChain = drafter.Unavailable{Err: err}
	}

	// Initialize services
	authSvc := service.NewAuthService(repos.Users, repos.Tenants, repos.Branding, identity, sessions, cfg.JWT)
	tenantSvc := service.NewTenantService(repos.Tenants)
	brandingSvc := service.NewBrandingService(repos.Branding, repos.Tenants)
	userSvc := service.NewUserService(repos.Users, repos.Clients, repos.Tenants, repos.Branding, identity, emailSender)
	clientSvc := service.NewClientService(repos.Clients, repos.Users)
	jobSvc := service.NewJobService(repos.Jobs, repos.Clients, repos.Users)
	proposalSvc := service.NewProposalService(
		repos.Proposals, repos.Jobs, repos.Clients, repos.Users, repos.Tenants, repos.Branding,
		draftChain, specsValidator, emailSender,
	)
	incidentSvc := service.NewIncidentService(
		repos.Incidents, repos.Jobs, repos.Users, repos.Tenants, repos.Branding,
		draftChain, emailSender,
	)
	workSessionSvc := service.NewWorkSessionService(repos.WorkSessions, repos.Jobs, repos.Users)
	dashboardSvc := service.NewDashboardService(
		repos.Jobs, repos.Proposals, repos.Incidents, repos.WorkSessions, repos.Users,
		dashCache, cfg.Redis.DashboardTTL,
	)
	mediaSvc := service.NewMediaService(media, workSessionSvc, incidentSvc, proposalSvc, &cfg.S3)
	exportSvc := service.NewExportService(repos.Jobs, repos.Clients, repos.Users, repos.WorkSessions)

	// Initialize handlers
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Tenant:      handler.NewTenantHandler(tenantSvc, brandingSvc),
		User:        handler.NewUserHandler(userSvc),
		Client:      handler.NewClientHandler(clientSvc),
		Job:         handler.NewJobHandler(jobSvc),
		Proposal:    handler.NewProposalHandler(proposalSvc),
		Incident:    handler.NewIncidentHandler(incidentSvc),
		WorkSession: handler.NewWorkSessionHandler(workSessionSvc),
		Media:       handler.NewMediaHandler(mediaSvc),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc),
		Export:      handler.NewExportHandler(exportSvc),
		Health:      handler.NewHealthHandler(repos.Health),
	}

	limiter := middleware.NewTenantLimiter(cfg.RateLimit.DraftRequests, cfg.RateLimit.DraftWindow)
	r := router.Setup(authSvc, handlers, cfg.CORS.AllowedOrigins, limiter)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (%s, store=%s)", cfg.Server.Port, cfg.Server.Environment, cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down server...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// registerDrafters makes every built-in provider selectable by name in config.
func registerDrafters() {
	drafter.RegisterProvider("endpoint", func(cfg *config.DrafterProviderConfig) (port.Drafter, error) {
		return endpoint.NewDrafter(cfg)
	})
	drafter.RegisterProvider("claude", func(cfg *config.DrafterProviderConfig) (port.Drafter, error) {
		return claude.NewDrafter(cfg), nil
	})
	drafter.RegisterProvider("openai", func(cfg *config.DrafterProviderConfig) (port.Drafter, error) {
		return openai.NewDrafter(cfg), nil
	})
	drafter.RegisterProvider("gemini", func(cfg *config.DrafterProviderConfig) (port.Drafter, error) {
		return gemini.NewDrafter(cfg), nil
	})
	drafter.RegisterProvider("ollama", func(cfg *config.DrafterProviderConfig) (port.Drafter, error) {
		return ollama.NewDrafter(cfg)
	})
}

func newEmailSender(ctx context.Context, cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		sender, err := ses.NewSESSender(ctx, cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		log.Printf("Email: SES (%s) from %s", cfg.Region, cfg.FromAddress)
		return sender, nil
	case "noop", "":
		log.Println("Email: noop sender, messages are logged only")
		return noop.NewNoopSender(cfg.FrontendURL), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
