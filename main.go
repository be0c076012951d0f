// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/api"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/app"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/metrics"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/wizard"
	"github.com/AI-Template-SDK/senso-geo-wizard/workflows"
)

const sweepInterval = 15 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Log.Infof("Environment: %s", cfg.Environment)
	logger.Log.Infof("Port: %s", cfg.Port)
	logger.Log.Infof("Responder: %s", cfg.ResponderProvider)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: 0.1,
		}); err != nil {
			logger.Log.Warnf("Sentry initialization failed: %v", err)
		} else {
			logger.Log.Info("Sentry initialized")
			defer sentry.Flush(2 * time.Second)
		}
	}

	if cfg.IsDevelopment() {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		logger.Log.Info("Running in development mode - signing key verification disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	policy, err := app.LoadPolicy(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to load policy: %v", err)
	}
	svc, err := app.NewServices(cfg, policy, m)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize services: %v", err)
	}

	store := wizard.NewStore(cfg.SessionTTL, m)
	alerter := workflows.NewAlerter(cfg.SlackWebhookURL, cfg.SentryDSN != "")
	runner := wizard.NewRunner(store, svc.Analysis, alerter)

	logger.Log.Infof("Creating Inngest client with AppID: senso-geo-wizard, Environment: %s", cfg.Environment)
	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "senso-geo-wizard",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		logger.Log.Fatalf("Failed to create Inngest client: %v", err)
	}

	logger.Log.Info("Initializing and registering workflows...")
	analysisProcessor := workflows.NewAnalysisProcessor(svc.Analysis, store, runner, alerter, m)
	analysisProcessor.SetClient(client)
	analysisProcessor.ProcessAnalysis()

	sweeper := workflows.NewSessionSweeper(store)
	sweeper.SetClient(client)
	sweeper.SweepSessions()

	var dispatcher wizard.Dispatcher = runner
	if cfg.AnalysisDispatch == "inngest" {
		dispatcher = analysisProcessor
		logger.Log.Info("Analyses dispatched through Inngest")
	} else {
		go sweeper.Run(ctx, sweepInterval)
		logger.Log.Info("Analyses run in-process; sessions swept locally")
	}

	handler := api.New(api.Deps{
		Store:      store,
		Runner:     runner,
		Dispatcher: dispatcher,
		Topics:     svc.Topics,
		Prompts:    svc.Prompts,
		Drafting:   svc.Drafting,
		Export:     svc.Export,
		Metrics:    m,
		Inngest:    client.Serve(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	logger.Log.Infof("Starting Senso GEO Wizard service on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatal(err)
	}
	runner.Wait()
}
