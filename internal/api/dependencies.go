package api

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/config"
	"uav-logchat/flightdesk/internal/flightlog"
	"uav-logchat/flightdesk/internal/logging"
	"uav-logchat/flightdesk/internal/metrics"
	"uav-logchat/flightdesk/internal/providers"
	"uav-logchat/flightdesk/internal/services"
)

type Caches struct {
	Backend       string
	Summaries     common.CacheInterface
	Conversations common.CacheInterface
}

type Services struct {
	Logs *services.LogService
	Chat *services.ChatService
	LLM  providers.LanguageModel
}

type Dependencies struct {
	Config   *config.Config
	Caches   *Caches
	Services *Services
	Metrics  *metrics.MetricsRegistry
	Gatherer prometheus.Gatherer
	UpSince  time.Time
}

// InitDependencies builds the caches, provider and services described by cfg.
func InitDependencies(ctx context.Context, cfg *config.Config, metricsReg *metrics.MetricsRegistry, gatherer prometheus.Gatherer) (*Dependencies, error) {
	caches, err := initCaches(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	if cfg.Gemini.APIKey == "" {
		logging.Warn("GEMINI_API_KEY is not set; chat requests will return a provider error")
	}
	llm := providers.NewGeminiProvider(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)

	logSvc, err := services.NewLogService(caches.Summaries, metricsReg, services.LogServiceConfig{
		UploadDir: cfg.Upload.Dir,
		Limits: flightlog.Limits{
			MaxRecords: cfg.Upload.MaxRecords,
			Timeout:    cfg.Upload.ParseTimeout,
		},
		MaxConcurrentParses: cfg.Upload.MaxConcurrentParses,
		SummaryTTL:          cfg.Cache.SummaryTTL,
	})
	if err != nil {
		caches.Close()
		return nil, err
	}

	chatSvc := services.NewChatService(caches.Conversations, llm, metricsReg, cfg.Cache.ConversationTTL)

	return &Dependencies{
		Config: cfg,
		Caches: caches,
		Services: &Services{
			Logs: logSvc,
			Chat: chatSvc,
			LLM:  llm,
		},
		Metrics:  metricsReg,
		Gatherer: gatherer,
		UpSince:  time.Now(),
	}, nil
}

func initCaches(ctx context.Context, cfg config.CacheConfig) (*Caches, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		summaries, err := common.NewRedisCacheService(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.SummaryTTL)
		if err != nil {
			return nil, err
		}
		conversations, err := common.NewRedisCacheService(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.ConversationTTL)
		if err != nil {
			summaries.Close()
			return nil, err
		}
		return &Caches{Backend: cfg.Backend, Summaries: summaries, Conversations: conversations}, nil

	case config.CacheBackendMemory:
		return &Caches{
			Backend:       cfg.Backend,
			Summaries:     common.NewCacheService(cfg.SummaryTTL, 10*time.Minute),
			Conversations: common.NewCacheService(cfg.ConversationTTL, 10*time.Minute),
		}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// Close releases cache connections.
func (c *Caches) Close() error {
	err := c.Summaries.Close()
	if cerr := c.Conversations.Close(); err == nil {
		err = cerr
	}
	return err
}
