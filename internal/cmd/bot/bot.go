// Package bot parses bot command flags and launches the game bot.
package bot

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	botgw "github.com/tengfone/deadtext/internal/bot"
	"github.com/tengfone/deadtext/internal/game/cache"
	"github.com/tengfone/deadtext/internal/game/domain/profile"
	"github.com/tengfone/deadtext/internal/game/domain/turn"
	"github.com/tengfone/deadtext/internal/game/oracle"
	"github.com/tengfone/deadtext/internal/game/playerlock"
	"github.com/tengfone/deadtext/internal/game/ratelimit"
	"github.com/tengfone/deadtext/internal/game/reaper"
	"github.com/tengfone/deadtext/internal/game/service"
	"github.com/tengfone/deadtext/internal/game/storage/sqlite"
	"github.com/tengfone/deadtext/internal/platform/config"
	"github.com/tengfone/deadtext/internal/random"
)

// Config holds bot command configuration.
type Config struct {
	TelegramToken string        `env:"DEADTEXT_TELEGRAM_TOKEN"`
	DBPath        string        `env:"DEADTEXT_DB_PATH" envDefault:"deadtext.sqlite"`
	OracleAPIKey  string        `env:"OPENROUTER_API_KEY"`
	OracleBaseURL string        `env:"DEADTEXT_ORACLE_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OracleModel   string        `env:"DEADTEXT_ORACLE_MODEL" envDefault:"mistralai/mistral-nemo"`
	OracleTimeout time.Duration `env:"DEADTEXT_ORACLE_TIMEOUT" envDefault:"30s"`
	ReapInterval  time.Duration `env:"DEADTEXT_REAP_INTERVAL" envDefault:"1h"`
	ReapThreshold time.Duration `env:"DEADTEXT_REAP_THRESHOLD" envDefault:"24h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	fs.StringVar(&cfg.OracleModel, "oracle-model", cfg.OracleModel, "Chat-completions model for narration")
	fs.DurationVar(&cfg.ReapInterval, "reap-interval", cfg.ReapInterval, "How often idle sessions are swept")
	fs.DurationVar(&cfg.ReapThreshold, "reap-threshold", cfg.ReapThreshold, "Idle time before a session is abandoned")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run wires storage, engine, oracle and gateway, then serves updates
// until the context ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("DEADTEXT_TELEGRAM_TOKEN is required")
	}

	table, err := profile.Load()
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	seed, err := random.NewSeed()
	if err != nil {
		return fmt.Errorf("seed rng: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))

	fallback := oracle.NewFallback(rand.New(rand.NewSource(seed + 1)))
	var narrator oracle.Oracle = fallback
	if cfg.OracleAPIKey != "" {
		client, err := oracle.NewClient(oracle.ClientConfig{
			APIKey:  cfg.OracleAPIKey,
			BaseURL: cfg.OracleBaseURL,
			Model:   cfg.OracleModel,
			Timeout: cfg.OracleTimeout,
		})
		if err != nil {
			return fmt.Errorf("oracle client: %w", err)
		}
		narrator = oracle.WithFallback(client, fallback)
	} else {
		log.Printf("event=oracle_disabled reason=missing_api_key")
	}

	sessions := cache.New(store, table)
	locks := playerlock.New(0)
	limiter := ratelimit.New(store, table.RateLimit.MaxMessagesPerDay, table.RateLimit.ResetHourUTC)
	engine := turn.NewEngine(table)
	svc := service.New(sessions, store, engine, narrator, limiter, locks, table, rng)

	if err := svc.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate sessions: %w", err)
	}

	sweeper := reaper.New(store, sessions, limiter, locks, cfg.ReapInterval, cfg.ReapThreshold)
	go sweeper.Run(ctx)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}
	log.Printf("event=bot_authorized account=%s", api.Self.UserName)

	botgw.New(api, svc).Run(ctx)
	return nil
}
