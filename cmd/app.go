package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/providers"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/rediscache"
	"github.com/ensa-hoceima/hr-assistant/internal/filtering"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
	"github.com/ensa-hoceima/hr-assistant/internal/messaging/twilio"
	"github.com/ensa-hoceima/hr-assistant/internal/metrics"
	"github.com/ensa-hoceima/hr-assistant/internal/secrets"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
	"github.com/ensa-hoceima/hr-assistant/internal/similarity"
	"github.com/ensa-hoceima/hr-assistant/internal/store"
)

// runtime holds everything a command may need. Optional parts are nil when
// not configured.
type runtime struct {
	config  *Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	store    *store.Store
	ai       *ai.Client
	embedder ai.Embedder
	analyzer *insights.Analyzer
	twilio   *twilio.Client

	closers []func() error
}

// needs selects the optional parts a command builds.
type needs struct {
	store bool
	ai    bool
	// optionalAI builds the provider when possible and continues without it
	// otherwise.
	optionalAI bool
	twilio     bool
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// setup builds the runtime or exits through the logger, the way every command
// of the tool fails.
func setup(ctx context.Context, n needs) *runtime {
	l := newLogger()

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	rt, err := build(ctx, config, n, l)
	if err != nil {
		l.Fatal("starting the hr-assistant", zap.Error(err))
	}
	return rt
}

func build(ctx context.Context, config *Config, n needs, l *zap.Logger) (*runtime, error) {
	rt := &runtime{config: config, logger: l, metrics: metrics.New()}

	if n.store {
		st, err := store.Open(config.Store.Path, l)
		if err != nil {
			return nil, err
		}
		rt.store = st
		rt.closers = append(rt.closers, st.Close)
	}

	if n.ai || n.optionalAI {
		if err := rt.buildAI(ctx); err != nil {
			if n.ai {
				rt.close()
				return nil, err
			}
			l.Warn("ai provider is not available, continuing without it", zap.Error(err))
		}
	}
	// The analyzer always exists: without a provider its AI paths report
	// insights.ErrAIDisabled and keyword fallbacks still work.
	var gen ai.TextGenerator
	if rt.ai != nil {
		gen = rt.ai
	}
	rt.analyzer = insights.NewAnalyzer(gen, config.AI.analyzerOptions(config.Features, config.Log.MaxLength), l, rt.metrics)

	if n.twilio {
		client, err := newTwilio(config.Twilio, l, rt.metrics)
		if err != nil {
			// Messaging is advisory; commands that require it check rt.twilio.
			l.Warn("whatsapp messaging is not configured", zap.Error(err))
		} else {
			rt.twilio = client
		}
	}
	return rt, nil
}

func (rt *runtime) buildAI(ctx context.Context) error {
	cfg := rt.config.AI
	pcfg := cfg.providerConfig()

	provider, err := providers.New(ctx, pcfg, rt.logger)
	if err != nil {
		return fmt.Errorf("building ai provider: %w", err)
	}

	opts := []ai.Option{
		ai.WithLogger(logger.WithCommonFields(rt.logger, provider.Name(), provider.Model())),
		ai.WithMetrics(rt.metrics),
		ai.WithMaxLogLength(rt.config.Log.MaxLength),
	}
	switch cfg.Cache.Backend {
	case cacheRedis:
		cache := rediscache.New(rediscache.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.TTL,
			Prefix:   cfg.Cache.Redis.Prefix,
		}, rt.logger)
		if err := cache.Ping(ctx); err != nil {
			// Failures degrade to misses, so keep going.
			rt.logger.Warn("redis cache is unreachable", zap.String("addr", cfg.Cache.Redis.Addr), zap.Error(err))
		}
		rt.closers = append(rt.closers, cache.Close)
		opts = append(opts, ai.WithCache(cache))
	default:
		opts = append(opts, ai.WithCache(ai.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)))
	}
	embedder, err := providers.NewEmbedder(ctx, pcfg, provider)
	if err != nil {
		return fmt.Errorf("building embedder: %w", err)
	}
	rt.ai = ai.NewClient(provider, opts...)
	rt.embedder = embedder
	return nil
}

func newTwilio(cfg TwilioConfig, l *zap.Logger, m *metrics.Metrics) (*twilio.Client, error) {
	token, err := secrets.LoadOptional(secretSource("twilio auth token", cfg.AuthToken, cfg.AuthTokenFile, "TWILIO_AUTH_TOKEN"))
	if err != nil {
		return nil, err
	}
	return twilio.New(twilio.Config{
		AccountSID: cfg.AccountSID,
		AuthToken:  token,
		FromNumber: cfg.FromNumber,
	}, l, m)
}

func secretSource(name, value, file, env string) secrets.Source {
	return secrets.Source{Name: name, Value: value, File: file, Env: env}
}

func (rt *runtime) deps() service.Deps {
	d := service.Deps{
		Store:    rt.store,
		Analyzer: rt.analyzer,
		Flags:    rt.config.Features,
		Logger:   rt.logger,
	}
	// A nil *twilio.Client must not become a non-nil interface.
	if rt.twilio != nil {
		d.Notifier = rt.twilio
	}
	return d
}

func (rt *runtime) matchingService() (*service.MatchingService, error) {
	var embedder ai.Embedder = ai.NoEmbeddings{}
	if rt.embedder != nil {
		embedder = rt.embedder
	}
	engine, err := matching.NewEngine(similarity.NewSemantic(embedder, rt.logger), rt.config.Matching.Engine, rt.logger)
	if err != nil {
		return nil, err
	}
	return service.NewMatchingService(rt.deps(), engine), nil
}

func (rt *runtime) filterConfig() filtering.Config {
	return filtering.Config{
		Threshold:        rt.config.Matching.Threshold,
		ExcludeFile:      rt.config.Matching.ExcludeFile,
		RememberRejected: rt.config.Matching.RememberRejected,
		Top:              rt.config.Matching.Top,
	}
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("closing", zap.Error(err))
		}
	}
	rt.closers = nil
	_ = rt.logger.Sync()
}
