// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-engine/internal/common/auth"
	"loan-engine/internal/common/aws"
	"loan-engine/internal/common/camunda"
	"loan-engine/internal/common/config"
	"loan-engine/internal/common/database"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/observability"
	"loan-engine/internal/engine"
	"loan-engine/internal/engine/bureau"
	"loan-engine/internal/engine/scorer"
	"loan-engine/pkg/registry"

	isr "loan-engine/internal/workers/scoring/index-score-report"
	psr "loan-engine/internal/workers/scoring/persist-score-report"
	scr "loan-engine/internal/workers/scoring/score-credit-risk"
	sdn "loan-engine/internal/workers/scoring/send-decision-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Build Scorer Registry ---
	// A misconfigured factor set (bad weights, duplicates) is a deployment
	// defect, so it aborts startup instead of degrading at scoring time.
	scorerRegistry, err := scorer.NewDefaultRegistry(log)
	if err != nil {
		zapLog.Fatal("scorer registry misconfigured", zap.Error(err))
	}
	zapLog.Info("scorer registry built",
		zap.Strings("factors", scorerRegistry.FactorNames()),
		zap.Float64("totalWeight", scorerRegistry.TotalWeight()),
	)

	// --- Load Activity Registry ---
	activityRegistry, err := registry.LoadRegistry("configs/activity-registry.json")
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	zapLog.Info("activity registry loaded",
		zap.String("version", activityRegistry.Version),
		zap.Int("activities", len(activityRegistry.Activities)),
	)

	// --- Init Camunda Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	identityClient := auth.NewIdentityClient(
		cfg.Auth.Identity.URL,
		cfg.Auth.Identity.Realm,
		cfg.Auth.Identity.ClientID,
		cfg.Auth.Identity.ClientSecret,
	)

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SES client init failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SNS client init failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- Build Scoring Engine ---
	var lookup bureau.LookupService = bureau.NewHTTPLookup(cfg.Bureau.BaseURL, cfg.Bureau.APIKey)
	if cfg.Bureau.CacheTTL > 0 {
		lookup = bureau.NewCachedLookup(lookup, redis, time.Duration(cfg.Bureau.CacheTTL)*time.Millisecond, log)
	}

	scoringEngine := engine.New(
		scorerRegistry,
		lookup,
		time.Duration(cfg.Bureau.Timeout)*time.Millisecond,
		log,
	)

	// --- START: Register Workers ---
	var workers []*camunda.CamundaWorker

	// --- 1. Scoring ---
	if cfg.Workers[scr.TaskType].Enabled {
		requireActivity(activityRegistry, scr.TaskType, zapLog)
		handler := scr.NewHandler(
			&scr.Config{
				Timeout:       time.Duration(cfg.Workers[scr.TaskType].Timeout) * time.Millisecond,
				LookupTimeout: time.Duration(cfg.Bureau.Timeout) * time.Millisecond,
			},
			scoringEngine,
			&identityResolverAdapter{client: identityClient},
			log,
		)
		workers = append(workers, startWorker(camundaClient, scr.TaskType, cfg.Workers[scr.TaskType], handler, zapLog))
	}

	// --- 2. Persistence ---
	if cfg.Workers[psr.TaskType].Enabled {
		requireActivity(activityRegistry, psr.TaskType, zapLog)
		handler := psr.NewHandler(
			&psr.Config{
				Timeout: time.Duration(cfg.Workers[psr.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		workers = append(workers, startWorker(camundaClient, psr.TaskType, cfg.Workers[psr.TaskType], handler, zapLog))
	}

	// --- 3. Audit Indexing ---
	if cfg.Workers[isr.TaskType].Enabled {
		requireActivity(activityRegistry, isr.TaskType, zapLog)
		handler := isr.NewHandler(
			&isr.Config{
				Timeout: time.Duration(cfg.Workers[isr.TaskType].Timeout) * time.Millisecond,
				Index:   cfg.Database.Elasticsearch.AuditIndex,
			},
			esClient, log,
		)
		workers = append(workers, startWorker(camundaClient, isr.TaskType, cfg.Workers[isr.TaskType], handler, zapLog))
	}

	// --- 4. Notification ---
	if cfg.Workers[sdn.TaskType].Enabled {
		requireActivity(activityRegistry, sdn.TaskType, zapLog)
		handler := sdn.NewHandlerWithClients(
			&sdn.Config{
				Timeout:         time.Duration(cfg.Workers[sdn.TaskType].Timeout) * time.Millisecond,
				EmailEnabled:    cfg.Notifications.Email.Enabled,
				SMSEnabled:      cfg.Notifications.SMS.Enabled,
				FromEmail:       cfg.Notifications.Email.FromEmail,
				ReviewThreshold: cfg.Notifications.SMS.ReviewThreshold,
			},
			sesClient, snsClient, log,
		)
		workers = append(workers, startWorker(camundaClient, sdn.TaskType, cfg.Workers[sdn.TaskType], handler, zapLog))
	}

	// --- END: Register Workers ---

	// --- Health/Metrics Server ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintln(w, "broker unreachable")
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// identityResolverAdapter narrows the identity client to the resolver
// interface the scoring worker needs for scoredBy attribution.
type identityResolverAdapter struct {
	client *auth.IdentityClient
}

func (a *identityResolverAdapter) Resolve(ctx context.Context, token string) (string, error) {
	principal, err := a.client.IntrospectToken(ctx, token)
	if err != nil {
		return "", err
	}
	if principal.Username != "" {
		return principal.Username, nil
	}
	return principal.ClientID, nil
}

// requireActivity refuses to start a worker whose task type is missing from
// the activity registry, keeping the registry and deployment in sync.
func requireActivity(reg *registry.ActivityRegistry, taskType string, log *zap.Logger) {
	if _, err := reg.FindByTaskType(taskType); err != nil {
		log.Fatal("worker not present in activity registry", zap.String("taskType", taskType), zap.Error(err))
	}
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(
		client.GetClient(),
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handler,
		log,
	)
	w.Start()

	log.Info("worker registered",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
