package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/medflow-ai/appointment-agent/agent/agents/orchestrator"
	taskhandlerx "github.com/medflow-ai/appointment-agent/agent/agents/taskhandler"
	llmx "github.com/medflow-ai/appointment-agent/agent/llm"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
	configx "github.com/medflow-ai/appointment-agent/pkg/config"
	httpapix "github.com/medflow-ai/appointment-agent/pkg/httpapi"
	_ "github.com/medflow-ai/appointment-agent/pkg/logger/autoload"
	metricsx "github.com/medflow-ai/appointment-agent/pkg/metrics"
	openrouterx "github.com/medflow-ai/appointment-agent/pkg/openrouter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	httpCfg := configx.MustNew[httpapix.Config]("HTTP")

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		log.Fatal().Msg("openrouter api key is required")
	}
	checkModel(ctx, openRouterClient, openRouterCfg)

	slotStore := newSlotStore()
	sessionStore := newSessionStore()

	registry, err := taskhandlerx.NewRegistry(ctx, *llmCfg, slotStore)
	if err != nil {
		log.Fatal().Err(err).Msg("build handler registry")
	}

	metrics := metricsx.NewConversationMetrics(nil)

	svc, err := orchestratorx.New(registry, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	handler := httpapix.NewAgentHandler(svc, sessionStore)
	server := httpapix.NewServer(*httpCfg, httpapix.NewRouter(handler))

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

// checkModel verifies the default model is reachable before serving.
// A failure is logged, not fatal: OpenRouter may recover before the
// first turn arrives.
func checkModel(ctx context.Context, client *openai.Client, cfg *openrouterx.Config) {
	checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := openrouterx.CheckModel(checkCtx, client, cfg.Model); err != nil {
		log.Warn().Err(err).Str("model", cfg.Model).Msg("openrouter model check failed")
		return
	}
	log.Info().Str("model", cfg.Model).Msg("openrouter model check ok")
}

// newSlotStore prefers Postgres when SCHEDULE_DSN is configured and
// falls back to a seeded in-memory store for local runs.
func newSlotStore() schedulex.Store {
	cfg, err := configx.New[schedulex.PostgresConfig]("SCHEDULE")
	if err == nil {
		store, perr := schedulex.NewPostgresStore(*cfg)
		if perr == nil {
			log.Info().Msg("slot store: postgres")
			return store
		}
		log.Warn().Err(perr).Msg("postgres slot store unavailable, using in-memory store")
	}

	dates := upcomingDates(14)
	log.Info().Int("days", len(dates)).Msg("slot store: in-memory, seeded")
	return schedulex.NewMemoryStore(schedulex.SeedSlots(dates))
}

// newSessionStore prefers Upstash Redis when UPSTASH_REDIS_* is
// configured and falls back to process-local memory.
func newSessionStore() statex.Store {
	cfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if err == nil {
		store, serr := statex.NewUpstashRedisStore(*cfg)
		if serr == nil {
			log.Info().Msg("session store: upstash redis")
			return store
		}
		log.Warn().Err(serr).Msg("upstash session store unavailable, using in-memory store")
	}

	log.Info().Msg("session store: in-memory")
	return statex.NewMemoryStore()
}

func upcomingDates(days int) []string {
	dates := make([]string, 0, days)
	now := time.Now()
	for i := 0; i < days; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format("02-01-2006"))
	}
	return dates
}
