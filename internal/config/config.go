package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment. A .env
// file is honored when present so local runs match the deployment.
type Config struct {
	TelegramToken string
	// AllowedChatIDs is the ACL. Empty means every chat is allowed.
	AllowedChatIDs []int64

	FinnhubAPIKey string

	GenerationAPIKey  string
	GenerationBaseURL string
	GenerationModel   string

	// BenchmarkSymbol is the market-wide reference ticker (SPY).
	BenchmarkSymbol string

	// TypingInterval is how often the "still working" signal fires.
	TypingInterval time.Duration
	// EditInterval is the minimum gap between edits of a streamed message.
	EditInterval time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads the environment (plus an optional .env file) and validates
// that the required secrets are present.
func Load() (*Config, error) {
	// Missing .env is fine: deployments set real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		FinnhubAPIKey:     os.Getenv("FINNHUB_API_KEY"),
		GenerationAPIKey:  os.Getenv("GENERATION_API_KEY"),
		GenerationBaseURL: getEnv("GENERATION_BASE_URL", "https://integrate.api.nvidia.com/v1"),
		GenerationModel:   getEnv("GENERATION_MODEL", "meta/llama-3.1-70b-instruct"),
		BenchmarkSymbol:   getEnv("BENCHMARK_SYMBOL", "SPY"),
		TypingInterval:    getDuration("TYPING_INTERVAL", 2*time.Second),
		EditInterval:      getDuration("EDIT_INTERVAL", 200*time.Millisecond),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}

	var missing []string
	for key, val := range map[string]string{
		"TELEGRAM_BOT_TOKEN": cfg.TelegramToken,
		"FINNHUB_API_KEY":    cfg.FinnhubAPIKey,
		"GENERATION_API_KEY": cfg.GenerationAPIKey,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	ids, err := parseChatIDs(os.Getenv("TG_ALLOWED_IDS"))
	if err != nil {
		return nil, fmt.Errorf("TG_ALLOWED_IDS: %w", err)
	}
	cfg.AllowedChatIDs = ids

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// parseChatIDs parses a comma-separated chat-id list ("123, 456").
func parseChatIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
