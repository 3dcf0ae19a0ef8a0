package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/providers"
	"github.com/ensa-hoceima/hr-assistant/internal/ai/rediscache"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
)

const (
	app       = "hr-assistant"
	envPrefix = "HR_ASSISTANT"

	cacheMemory = "memory"
	cacheRedis  = "redis"
)

type Config struct {
	AI       AIConfig       `mapstructure:"ai"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	Store    StoreConfig    `mapstructure:"store"`
	Features service.Flags  `mapstructure:"features"`
	Matching MatchingConfig `mapstructure:"matching"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log"`
}

type AIConfig struct {
	Provider    string          `mapstructure:"provider"`
	HuggingFace BackendConfig   `mapstructure:"huggingface"`
	Bytez       BackendConfig   `mapstructure:"bytez"`
	Gemini      BackendConfig   `mapstructure:"gemini"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Embeddings  EmbeddingConfig `mapstructure:"embeddings"`
	// HighRisk and MediumRisk are turnover score cutoffs.
	HighRisk   int `mapstructure:"high-risk"`
	MediumRisk int `mapstructure:"medium-risk"`
}

type BackendConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	APIKeyEnv  string `mapstructure:"api-key-env"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type TwilioConfig struct {
	AccountSID    string `mapstructure:"account-sid"`
	AuthToken     string `mapstructure:"auth-token"`
	AuthTokenFile string `mapstructure:"auth-token-file"`
	FromNumber    string `mapstructure:"from-number"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type MatchingConfig struct {
	Threshold        float64          `mapstructure:"threshold"`
	ExcludeFile      string           `mapstructure:"exclude-file"`
	RememberRejected bool             `mapstructure:"remember-rejected"`
	Top              int              `mapstructure:"top"`
	Engine           matching.Options `mapstructure:"engine"`
}

type ScheduleConfig struct {
	Checkin  string `mapstructure:"checkin"`
	Turnover string `mapstructure:"turnover"`
}

type LogConfig struct {
	MaxLength int `mapstructure:"max-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-assistant is an AI-assisted HR toolkit: evaluations, internships, matching and WhatsApp notifications",
	}
)

// Execute executes the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hr-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("store", "", "path of the sqlite database")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig wires env overrides and reads the config file. An explicitly
// named file must exist; the default one is optional.
func readConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// setDefaults registers every key so env overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	flags := service.DefaultFlags()
	engine := matching.DefaultOptions()
	analyzer := insights.DefaultOptions()

	defaults := map[string]any{
		"ai.provider":                 "huggingface",
		"ai.huggingface.model":        "",
		"ai.huggingface.api-key":      "",
		"ai.huggingface.api-key-file": "",
		"ai.huggingface.api-key-env":  "HUGGINGFACE_API_KEY",
		"ai.bytez.model":              "",
		"ai.bytez.api-key":            "",
		"ai.bytez.api-key-file":       "",
		"ai.bytez.api-key-env":        "BYTEZ_API_KEY",
		"ai.gemini.model":             "",
		"ai.gemini.api-key":           "",
		"ai.gemini.api-key-file":      "",
		"ai.gemini.api-key-env":       "GEMINI_API_KEY",
		"ai.cache.backend":            cacheMemory,
		"ai.cache.size":               ai.DefaultCacheSize,
		"ai.cache.ttl":                ai.DefaultCacheTTL,
		"ai.cache.redis.addr":         "localhost:6379",
		"ai.cache.redis.password":     "",
		"ai.cache.redis.db":           0,
		"ai.cache.redis.prefix":       rediscache.DefaultPrefix,
		"ai.embeddings.provider":      providers.EmbeddingsNone,
		"ai.embeddings.model":         "",
		"ai.high-risk":                analyzer.HighRisk,
		"ai.medium-risk":              analyzer.MediumRisk,

		"twilio.account-sid":     "",
		"twilio.auth-token":      "",
		"twilio.auth-token-file": "",
		"twilio.from-number":     "",

		"store.path": app + ".db",

		"features.enable-ai-features":         flags.AIFeatures,
		"features.enable-whatsapp-bot":        flags.WhatsAppBot,
		"features.enable-smart-matching":      flags.SmartMatching,
		"features.matching-threshold":         flags.MatchingThreshold,
		"features.enable-turnover-prediction": flags.TurnoverPrediction,
		"features.enable-internship-tracking": flags.InternshipTracking,

		"matching.threshold":         0,
		"matching.exclude-file":      "",
		"matching.remember-rejected": false,
		"matching.top":               0,

		"schedule.checkin":  "0 9 * * 1",
		"schedule.turnover": "0 7 1 * *",

		"log.max-length": logger.DefaultMaxLength,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	// Engine options are registered leaf by leaf so a file may override a
	// single weight.
	var tree map[string]any
	if err := mapstructure.Decode(engine, &tree); err == nil {
		setNested(v, "matching.engine", tree)
	}
}

func setNested(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := prefix + "." + k
		if sub, ok := val.(map[string]any); ok {
			setNested(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	applyDefaults(&config)
	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills values a config file may have zeroed out.
func applyDefaults(c *Config) {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	c.AI.Cache.Backend = strings.ToLower(strings.TrimSpace(c.AI.Cache.Backend))
	if c.AI.Cache.Backend == "" {
		c.AI.Cache.Backend = cacheMemory
	}
	if c.AI.Cache.Size <= 0 {
		c.AI.Cache.Size = ai.DefaultCacheSize
	}
	if c.AI.Cache.TTL <= 0 {
		c.AI.Cache.TTL = ai.DefaultCacheTTL
	}
	if c.AI.Embeddings.Provider == "" {
		c.AI.Embeddings.Provider = providers.EmbeddingsNone
	}
	if c.Store.Path == "" {
		c.Store.Path = app + ".db"
	}
	if c.Log.MaxLength <= 0 {
		c.Log.MaxLength = logger.DefaultMaxLength
	}
	if c.Matching.Engine == (matching.Options{}) {
		c.Matching.Engine = matching.DefaultOptions()
	}
}

func validate(c *Config) error {
	var problems []string

	known := false
	for _, tag := range providers.Tags() {
		if c.AI.Provider == tag {
			known = true
		}
	}
	if !known {
		problems = append(problems, fmt.Sprintf("ai.provider must be one of %s, got %q", strings.Join(providers.Tags(), ", "), c.AI.Provider))
	}
	if c.AI.Cache.Backend != cacheMemory && c.AI.Cache.Backend != cacheRedis {
		problems = append(problems, fmt.Sprintf("ai.cache.backend must be %s or %s", cacheMemory, cacheRedis))
	}
	if c.AI.Cache.Backend == cacheRedis && c.AI.Cache.Redis.Addr == "" {
		problems = append(problems, "ai.cache.redis.addr is required for the redis cache")
	}
	if c.AI.MediumRisk <= 0 || c.AI.HighRisk <= c.AI.MediumRisk || c.AI.HighRisk > 100 {
		problems = append(problems, "ai risk cutoffs must satisfy 0 < medium-risk < high-risk <= 100")
	}
	if t := c.Features.MatchingThreshold; t < 0 || t > 100 {
		problems = append(problems, "features.matching-threshold must be within 0..100")
	}
	if c.Matching.Top < 0 {
		problems = append(problems, "matching.top must not be negative")
	}
	if err := c.Matching.Engine.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("matching.engine: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// providerConfig maps the ai section onto the provider factory input.
func (c *AIConfig) providerConfig() providers.Config {
	backend := func(name string, b BackendConfig) providers.Backend {
		return providers.Backend{
			Model: b.Model,
			Key:   secretSource(name+" api key", b.APIKey, b.APIKeyFile, b.APIKeyEnv),
		}
	}
	return providers.Config{
		Provider:       c.Provider,
		HuggingFace:    backend("huggingface", c.HuggingFace),
		Bytez:          backend("bytez", c.Bytez),
		Gemini:         backend("gemini", c.Gemini),
		Embeddings:     c.Embeddings.Provider,
		EmbeddingModel: c.Embeddings.Model,
	}
}

func (c *AIConfig) analyzerOptions(flags service.Flags, maxLog int) insights.Options {
	return insights.Options{
		AIEnabled:    flags.AIFeatures,
		HighRisk:     c.HighRisk,
		MediumRisk:   c.MediumRisk,
		MaxLogLength: maxLog,
	}
}
