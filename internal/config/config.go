// Package config defines the sniper bot configuration and provides loading
// and validation helpers. All trading parameters are validated up front;
// invalid or missing configuration is a fatal startup error, never a runtime
// one.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SNIPER_* environment variables.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	Solana   SolanaConfig   `toml:"solana"`
	Jupiter  JupiterConfig  `toml:"jupiter"`
	Trading  TradingConfig  `toml:"trading"`
	Notify   NotifyConfig   `toml:"notify"`
	Server   ServerConfig   `toml:"server"`
	Report   ReportConfig   `toml:"report"`
	WatchOnly bool          `toml:"watch_only"`
	LogLevel string         `toml:"log_level"`
}

// TelegramConfig holds Telegram bot credentials and the channels to watch for
// token signals.
type TelegramConfig struct {
	BotToken string   `toml:"bot_token"`
	Channels []string `toml:"channels"`
}

// SolanaConfig holds chain access parameters and wallet credentials.
type SolanaConfig struct {
	RPCURL     string `toml:"rpc_url"`
	PrivateKey string `toml:"private_key"`
}

// JupiterConfig holds the swap aggregator API parameters.
type JupiterConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// TradingConfig holds the entry/exit parameters for the position lifecycle.
type TradingConfig struct {
	BuyAmountSOL       float64  `toml:"buy_amount_sol"`
	SlippageBps        int      `toml:"slippage_bps"`
	StopLossPercent    float64  `toml:"stop_loss_percent"`
	TakeProfitLevels   string   `toml:"take_profit_levels"`
	PriceCheckInterval duration `toml:"price_check_interval"`
	MaxBuyRetries      int      `toml:"max_buy_retries"`
	RetryDelay         duration `toml:"retry_delay"`

	// ladder is the parsed form of TakeProfitLevels, populated by Validate.
	ladder []domain.TakeProfitLevel
}

// Ladder returns the parsed take-profit ladder. Valid only after Validate.
func (t *TradingConfig) Ladder() []domain.TakeProfitLevel {
	return t.ladder
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// ServerConfig holds the read-only status HTTP server parameters.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// ReportConfig holds the periodic summary report schedule.
type ReportConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. These
// match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Jupiter: JupiterConfig{
			BaseURL: "https://api.jup.ag",
		},
		Trading: TradingConfig{
			BuyAmountSOL:       0.1,
			SlippageBps:        300,
			StopLossPercent:    10,
			TakeProfitLevels:   "2:50,3:50,5:100",
			PriceCheckInterval: duration{5 * time.Second},
			MaxBuyRetries:      3,
			RetryDelay:         duration{10 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"position_opened", "take_profit", "stop_loss", "position_closed", "buy_abandoned", "report", "error"},
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Report: ReportConfig{
			Enabled: false,
			Cron:    "@every 1h",
		},
		WatchOnly: false,
		LogLevel:  "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for invalid or missing values and returns a combined
// error describing every problem found. It also parses the take-profit ladder
// into its structured form.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Telegram
	if c.Telegram.BotToken == "" {
		errs = append(errs, "telegram: bot_token must not be empty")
	}
	if len(c.Telegram.Channels) == 0 {
		errs = append(errs, "telegram: at least one channel must be configured")
	}

	// Solana
	if c.Solana.RPCURL == "" {
		errs = append(errs, "solana: rpc_url must not be empty")
	}
	if !c.WatchOnly && c.Solana.PrivateKey == "" {
		errs = append(errs, "solana: private_key is required unless watch_only is set")
	}

	// Jupiter
	if c.Jupiter.BaseURL == "" {
		errs = append(errs, "jupiter: base_url must not be empty")
	}

	// Trading
	if c.Trading.BuyAmountSOL <= 0 {
		errs = append(errs, "trading: buy_amount_sol must be > 0")
	}
	if c.Trading.SlippageBps <= 0 {
		errs = append(errs, "trading: slippage_bps must be > 0")
	}
	if c.Trading.StopLossPercent <= 0 || c.Trading.StopLossPercent >= 100 {
		errs = append(errs, fmt.Sprintf("trading: stop_loss_percent must be in (0, 100), got %g", c.Trading.StopLossPercent))
	}
	if c.Trading.PriceCheckInterval.Duration <= 0 {
		errs = append(errs, "trading: price_check_interval must be > 0")
	}
	if c.Trading.MaxBuyRetries < 0 {
		errs = append(errs, "trading: max_buy_retries must be >= 0")
	}
	if c.Trading.RetryDelay.Duration <= 0 {
		errs = append(errs, "trading: retry_delay must be > 0")
	}

	ladder, err := ParseTakeProfitLevels(c.Trading.TakeProfitLevels)
	if err != nil {
		errs = append(errs, fmt.Sprintf("trading: take_profit_levels: %v", err))
	} else {
		c.Trading.ladder = ladder
	}

	// Notify: chat ID must accompany the token.
	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Report
	if c.Report.Enabled && c.Report.Cron == "" {
		errs = append(errs, "report: cron must not be empty when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ParseTakeProfitLevels parses an ordered "multiplier:percent" ladder, e.g.
// "2:50,3:50,5:100". Order is significant: tiers are evaluated strictly in
// sequence and never re-evaluated once passed.
func ParseTakeProfitLevels(s string) ([]domain.TakeProfitLevel, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("at least one level is required")
	}

	parts := strings.Split(s, ",")
	levels := make([]domain.TakeProfitLevel, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		mult, pct, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("level %q: want multiplier:percent", part)
		}

		m, err := strconv.ParseFloat(strings.TrimSpace(mult), 64)
		if err != nil {
			return nil, fmt.Errorf("level %q: bad multiplier: %w", part, err)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return nil, fmt.Errorf("level %q: bad percent: %w", part, err)
		}

		if m <= 1 {
			return nil, fmt.Errorf("level %q: multiplier must be > 1", part)
		}
		if p <= 0 || p > 100 {
			return nil, fmt.Errorf("level %q: percent must be in (0, 100]", part)
		}

		levels = append(levels, domain.TakeProfitLevel{Multiplier: m, Percent: p})
	}

	return levels, nil
}
