package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/islogix/docubridge/internal/api"
	"github.com/islogix/docubridge/internal/genai"
	"github.com/islogix/docubridge/internal/store"
	"github.com/islogix/docubridge/internal/telegram"
	"github.com/islogix/docubridge/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for DocuBridge state data
	DefaultStateDir = "/var/lib/docubridge"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "docubridge.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Build module options
	telegramOpts := buildTelegramOptions(flags)
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping DocuBridge with configured modules")
	slog.Debug("Module options counts", "telegram", len(telegramOpts), "store", len(storeOpts), "genai", len(genaiOpts), "api", len(apiOpts))
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := api.Run(telegramOpts, storeOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("DocuBridge failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("DocuBridge exited successfully")
}

// Config holds environment configuration
type Config struct {
	BotToken        string
	DatabaseURL     string
	StateDir        string
	OpenAIKey       string
	APIAddr         string
	WebhookURL      string
	WebhookSecret   string
	AdminChatID     string
	AdminMirror     bool
	TwilioEnabled   bool
	TurnTimeoutSecs int
}

// Flags holds command line flag values
type Flags struct {
	botToken      *string
	stateDir      *string
	dbDSN         *string
	openaiKey     *string
	apiAddr       *string
	webhookURL    *string
	webhookSecret *string
	adminChatID   *string
	adminMirror   *bool
	twilioEnabled *bool
	turnTimeout   *int
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StateDir:        os.Getenv("DOCUBRIDGE_STATE_DIR"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		APIAddr:         os.Getenv("API_ADDR"),
		WebhookURL:      os.Getenv("WEBHOOK_URL"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		AdminChatID:     os.Getenv("ADMIN_CHAT_ID"),
		AdminMirror:     util.ParseBoolEnv("ADMIN_MIRROR", false),
		TwilioEnabled:   util.ParseBoolEnv("TWILIO_ENABLED", false),
		TurnTimeoutSecs: util.ParseIntEnv("TURN_TIMEOUT_SECONDS", 0),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No DOCUBRIDGE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("DOCUBRIDGE_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"TELEGRAM_BOT_TOKEN_SET", config.BotToken != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"DOCUBRIDGE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"WEBHOOK_URL_SET", config.WebhookURL != "",
		"ADMIN_CHAT_ID_SET", config.AdminChatID != "",
		"ADMIN_MIRROR", config.AdminMirror,
		"TWILIO_ENABLED", config.TwilioEnabled)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		botToken:      flag.String("bot-token", config.BotToken, "Telegram bot token (overrides $TELEGRAM_BOT_TOKEN)"),
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for DocuBridge data (overrides $DOCUBRIDGE_STATE_DIR)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "database DSN: Postgres URL or SQLite file path (overrides $DATABASE_URL)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		webhookURL:    flag.String("webhook-url", config.WebhookURL, "public base URL for the Telegram webhook (overrides $WEBHOOK_URL)"),
		webhookSecret: flag.String("webhook-secret", config.WebhookSecret, "secret path segment of the webhook endpoint (overrides $WEBHOOK_SECRET)"),
		adminChatID:   flag.String("admin-chat-id", config.AdminChatID, "operator chat id for lead notifications (overrides $ADMIN_CHAT_ID)"),
		adminMirror:   flag.Bool("admin-mirror", config.AdminMirror, "mirror every exchange to the operator chat (overrides $ADMIN_MIRROR)"),
		twilioEnabled: flag.Bool("twilio", config.TwilioEnabled, "enable the Twilio SMS transport (overrides $TWILIO_ENABLED)"),
		turnTimeout:   flag.Int("turn-timeout", config.TurnTimeoutSecs, "per-turn deadline in seconds, 0 for the built-in default (overrides $TURN_TIMEOUT_SECONDS)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"botTokenSet", *flags.botToken != "",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"webhookURL_set", *flags.webhookURL != "",
		"adminChatID_set", *flags.adminChatID != "",
		"adminMirror", *flags.adminMirror,
		"twilio", *flags.twilioEnabled)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
		slog.Debug("State directory created successfully", "state_dir", stateDir)
	}
	return nil
}

// buildTelegramOptions constructs Telegram client configuration options
func buildTelegramOptions(flags Flags) []telegram.Option {
	var telegramOpts []telegram.Option
	if *flags.botToken != "" {
		telegramOpts = append(telegramOpts, telegram.WithToken(*flags.botToken))
	}
	return telegramOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		slog.Debug("Configuring store DSN", "dsn_type", store.DetectDSNType(*flags.dbDSN))
		storeOpts = append(storeOpts, store.WithDSN(*flags.dbDSN))
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.webhookURL != "" {
		apiOpts = append(apiOpts, api.WithWebhookURL(*flags.webhookURL))
	}
	if *flags.webhookSecret != "" {
		apiOpts = append(apiOpts, api.WithWebhookSecret(*flags.webhookSecret))
	}
	if *flags.adminChatID != "" {
		apiOpts = append(apiOpts, api.WithAdminChatID(*flags.adminChatID))
	}
	if *flags.adminMirror {
		apiOpts = append(apiOpts, api.WithAdminMirror())
	}
	if *flags.twilioEnabled {
		apiOpts = append(apiOpts, api.WithTwilio())
	}
	if *flags.turnTimeout > 0 {
		apiOpts = append(apiOpts, api.WithTurnTimeout(time.Duration(*flags.turnTimeout)*time.Second))
	}
	return apiOpts
}
