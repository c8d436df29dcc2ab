package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DanishBukhari/IntegWithGhl/internal/engine"
	healthservice "github.com/DanishBukhari/IntegWithGhl/internal/health_check/service"
	intakeservice "github.com/DanishBukhari/IntegWithGhl/internal/intake/service"
	"github.com/DanishBukhari/IntegWithGhl/internal/highlevel"
	"github.com/DanishBukhari/IntegWithGhl/internal/relay"
	"github.com/DanishBukhari/IntegWithGhl/internal/servicem8"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/config"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/managers"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/schedulers"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/statestore"
)

func main() {
	configFile := flag.String("config", "config/deployment.yaml", "Path to the deployment configuration file")
	flag.Parse()

	envFiles, _ := filepath.Glob("config/*.env")
	_ = godotenv.Load(envFiles...)

	// Load the configuration file.
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger.
	if err := log.Init(cfg.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sourceClient := servicem8.NewClient(cfg.ServiceM8)
	targetClient := highlevel.NewClient(cfg.HighLevel)
	store := statestore.NewStore(cfg.Sync.StateFile)

	policy := engine.StandardPaymentPolicy{
		RequireBadge:  cfg.Sync.RequireBadge,
		BadgeUUID:     cfg.Sync.BadgeUUID,
		RequireCutoff: cfg.Sync.RequireCutoff,
	}
	if cfg.Sync.RequireCutoff {
		policy.Cutoff = cfg.CompletionCutoffDate()
	}

	syncEngine := engine.New(engine.Config{
		Source:   sourceClient,
		Target:   targetClient,
		Store:    store,
		Policy:   policy,
		Lookback: time.Duration(cfg.Sync.LookbackMinutes) * time.Minute,
	})

	// Initialize the services.
	photoRelay := relay.New(sourceClient)
	intakeservice.Initialize(sourceClient, photoRelay, time.Duration(cfg.Sync.IntakeDebounceSeconds)*time.Second)
	healthservice.Initialize(store)

	// Start the poll routines.
	scheduler := schedulers.NewScheduler()
	scheduler.Register("contact-sync", time.Duration(cfg.Sync.ContactPollMinutes)*time.Minute, func(ctx context.Context) error {
		_, err := syncEngine.RunContactCycle(ctx)
		return err
	})
	scheduler.Register("payment-sync", time.Duration(cfg.Sync.PaymentPollMinutes)*time.Minute, func(ctx context.Context) error {
		_, err := syncEngine.RunPaymentCycle(ctx)
		return err
	})
	scheduler.Start(ctx)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Addr.Host, cfg.Addr.Port)
	mux := initMultiplexer()
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener", log.Error(err))
	}

	logger.Info("Field service bridge started", log.String("address", serverAddr))

	server := &http.Server{Handler: enableCORS(mux)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}

	scheduler.Wait()
	logger.Info("Field service bridge stopped")
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)

	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		log.GetLogger().Fatal("Failed to register the services", log.Error(err))
	}

	return mux
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
