package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jackc/pgx/v5/pgxpool"

	"recruitassist-backend/internal/agent"
	"recruitassist-backend/internal/api"
	"recruitassist-backend/internal/config"
	"recruitassist-backend/internal/handlers"
	"recruitassist-backend/internal/integrations/whatsapp"
	"recruitassist-backend/internal/services"
	"recruitassist-backend/internal/store/postgres"
)

func main() {
	log.Println("Starting RecruitAssist Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v\n", err)
	}
	log.Println("Database connection pool established and pinged successfully.")

	// 3. Initialize Dependencies (Store, Agent, Services, Handlers)
	pgStore := postgres.NewPostgresStore(dbpool)
	log.Println("Postgres store initialized.")

	// --- Initialize the HR Agent ---
	// Without an API key the agents run in offline mode and answer with a
	// canned reply, so the webhook keeps working in development setups.
	var sender agent.MessageSender
	if cfg.AnthropicAPIKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
		sender = agent.NewStreamingMessageSender(client)
		log.Println("Anthropic message sender initialized.")
	} else {
		log.Println("WARN: no Anthropic API key, agents run in offline mode.")
	}

	model := anthropic.Model(cfg.AnthropicModel)
	composer := agent.NewPromptComposer(pgStore)

	// The screening agent holds the job-domain tools. The reception agent
	// fronts the webhook and reaches screening through a delegate tool, each
	// with its own conversation transcript.
	screeningRegistry := agent.NewRegistry(cfg.AgentDisabledTools)
	screeningRegistry.Register(agent.NewGetAvailableJobsTool(pgStore))
	screeningRegistry.Register(agent.NewGetJobDetailsTool(pgStore))
	screeningRegistry.Register(agent.NewGetJobQuestionsTool(pgStore))
	screeningRegistry.Register(agent.NewSubmitApplicationTool(pgStore))
	screeningAgent := agent.New("screening", model, sender, screeningRegistry, pgStore, composer,
		agent.WithMaxToolIterations(cfg.AgentMaxToolIterations))

	receptionRegistry := agent.NewRegistry(cfg.AgentDisabledTools)
	receptionRegistry.Register(agent.NewGetAvailableJobsTool(pgStore))
	receptionRegistry.Register(agent.NewDelegateTool(
		"talk_to_screening_agent",
		"Hand the conversation to the screening agent for job details, screening questions and application submission. Pass along everything the user said.",
		screeningAgent, 2))
	hrAgent := agent.New("hr-assistant", model, sender, receptionRegistry, pgStore, composer,
		agent.WithMaxToolIterations(cfg.AgentMaxToolIterations))
	log.Println("HR agents initialized.")

	waClient := whatsapp.NewClient(cfg.WhatsAppAPIToken, cfg.WhatsAppAPIVersion, cfg.WhatsAppPhoneNumberID)
	log.Println("WhatsApp client initialized.")

	// --- Initialize Services ---
	authService := services.NewAuthService(pgStore, cfg)
	log.Println("AuthService initialized.")
	jobService := services.NewJobService(pgStore)
	log.Println("JobService initialized.")
	applicationService := services.NewApplicationService(pgStore)
	log.Println("ApplicationService initialized.")
	// The analysis reads every transcript the candidate may have, so both
	// agents' conversation keys are listed.
	analysisService := services.NewAnalysisService(pgStore, sender, model, []string{"hr-assistant", "screening"})
	log.Println("AnalysisService initialized.")

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	jobHandler := handlers.NewJobHandler(jobService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	webhookHandler := handlers.NewWhatsAppWebhookHandler(hrAgent, waClient, cfg.WhatsAppVerifyToken)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		AuthHandler:        authHandler,
		JobHandler:         jobHandler,
		ApplicationHandler: applicationHandler,
		AnalysisHandler:    analysisHandler,
		WebhookHandler:     webhookHandler,
		Config:             cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}
