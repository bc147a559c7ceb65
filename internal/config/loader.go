package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SNIPER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SNIPER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Telegram ──
	setStr(&cfg.Telegram.BotToken, "SNIPER_TELEGRAM_BOT_TOKEN")
	setStringSlice(&cfg.Telegram.Channels, "SNIPER_TELEGRAM_CHANNELS")

	// ── Solana ──
	setStr(&cfg.Solana.RPCURL, "SNIPER_SOLANA_RPC_URL")
	setStr(&cfg.Solana.PrivateKey, "SNIPER_SOLANA_PRIVATE_KEY")

	// ── Jupiter ──
	setStr(&cfg.Jupiter.BaseURL, "SNIPER_JUPITER_BASE_URL")
	setStr(&cfg.Jupiter.APIKey, "SNIPER_JUPITER_API_KEY")

	// ── Trading ──
	setFloat64(&cfg.Trading.BuyAmountSOL, "SNIPER_TRADING_BUY_AMOUNT_SOL")
	setInt(&cfg.Trading.SlippageBps, "SNIPER_TRADING_SLIPPAGE_BPS")
	setFloat64(&cfg.Trading.StopLossPercent, "SNIPER_TRADING_STOP_LOSS_PERCENT")
	setStr(&cfg.Trading.TakeProfitLevels, "SNIPER_TRADING_TAKE_PROFIT_LEVELS")
	setDuration(&cfg.Trading.PriceCheckInterval, "SNIPER_TRADING_PRICE_CHECK_INTERVAL")
	setInt(&cfg.Trading.MaxBuyRetries, "SNIPER_TRADING_MAX_BUY_RETRIES")
	setDuration(&cfg.Trading.RetryDelay, "SNIPER_TRADING_RETRY_DELAY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SNIPER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SNIPER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SNIPER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SNIPER_NOTIFY_EVENTS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SNIPER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SNIPER_SERVER_PORT")

	// ── Report ──
	setBool(&cfg.Report.Enabled, "SNIPER_REPORT_ENABLED")
	setStr(&cfg.Report.Cron, "SNIPER_REPORT_CRON")

	// ── Top-level ──
	setBool(&cfg.WatchOnly, "SNIPER_WATCH_ONLY")
	setStr(&cfg.LogLevel, "SNIPER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
