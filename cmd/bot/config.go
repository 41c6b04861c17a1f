package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/ticketing"
	"github.com/Jacobbrewer1/ticketeer/pkg/transcript"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the name of the application.
	AppName = "ticketeer"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMongoDatabase is the environment variable for the MongoDB database name.
	EnvMongoDatabase = `MONGO_DATABASE`

	// EnvStorePath is the environment variable for the directory of the file store. Used when no MongoDB URI is set.
	EnvStorePath = `STORE_PATH`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvCloseGraceDelay is the environment variable for the delay between closing a ticket and deleting its channel.
	EnvCloseGraceDelay = `CLOSE_GRACE_DELAY`

	// EnvTranscriptFetchLimit is the environment variable for the number of messages kept in a transcript.
	EnvTranscriptFetchLimit = `TRANSCRIPT_FETCH_LIMIT`

	// EnvSessionTTL is the environment variable for the lifetime of configuration sessions.
	EnvSessionTTL = `SESSION_TTL`

	// EnvCreateRateLimit is the environment variable for the ticket creations a member may attempt per minute.
	EnvCreateRateLimit = `CREATE_RATE_LIMIT`

	// EnvConfigFile is the environment variable for the path of the optional YAML config file.
	EnvConfigFile = `CONFIG_FILE`
)

const (
	defaultMonitoringPort  = "8080"
	defaultMongoDatabase   = AppName
	defaultStorePath       = "data"
	defaultCreateRateLimit = 6
)

// Config is the configuration of the bot.
type Config struct {
	BotToken             string        `yaml:"bot_token"`
	ApplicationId        string        `yaml:"application_id"`
	MongoUri             string        `yaml:"mongo_uri"`
	MongoDatabase        string        `yaml:"mongo_database"`
	StorePath            string        `yaml:"store_path"`
	MonitoringPort       string        `yaml:"monitoring_port"`
	CloseGraceDelay      time.Duration `yaml:"close_grace_delay"`
	TranscriptFetchLimit int           `yaml:"transcript_fetch_limit"`
	SessionTTL           time.Duration `yaml:"session_ttl"`
	CreateRateLimit      int           `yaml:"create_rate_limit"`
}

func defaultConfig() *Config {
	return &Config{
		MongoDatabase:        defaultMongoDatabase,
		StorePath:            defaultStorePath,
		MonitoringPort:       defaultMonitoringPort,
		CloseGraceDelay:      ticketing.DefaultGraceDelay,
		TranscriptFetchLimit: transcript.MaxFetchLimit,
		CreateRateLimit:      defaultCreateRateLimit,
	}
}

// loadDotEnv loads a .env file into the environment when one exists. Variables already set are kept.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// parseConfig reads the configuration. Values from the environment win over the YAML file, which wins over the
// defaults.
func parseConfig(l *slog.Logger, lookup func(string) (string, bool)) (*Config, error) {
	c := defaultConfig()

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		l.Debug("Reading config file", slog.String("path", path))
		if err := c.readFile(path); err != nil {
			return nil, err
		}
	}

	strVars := map[string]*string{
		EnvBotToken:       &c.BotToken,
		EnvApplicationId:  &c.ApplicationId,
		EnvMongoUri:       &c.MongoUri,
		EnvMongoDatabase:  &c.MongoDatabase,
		EnvStorePath:      &c.StorePath,
		EnvMonitoringPort: &c.MonitoringPort,
	}
	for key, dst := range strVars {
		if v, ok := lookup(key); ok && v != "" {
			l.Debug("Found value in environment", slog.String("key", key))
			*dst = v
		}
	}

	durVars := map[string]*time.Duration{
		EnvCloseGraceDelay: &c.CloseGraceDelay,
		EnvSessionTTL:      &c.SessionTTL,
	}
	for key, dst := range durVars {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", key, err)
		}
		*dst = d
	}

	intVars := map[string]*int{
		EnvTranscriptFetchLimit: &c.TranscriptFetchLimit,
		EnvCreateRateLimit:      &c.CreateRateLimit,
	}
	for key, dst := range intVars {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", key, err)
		}
		*dst = n
	}

	return c, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("error decoding config file: %w", err)
	}
	return nil
}

// Validate reports every missing or out of range value.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvBotToken))
	}
	if c.ApplicationId == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvApplicationId))
	}
	if c.MongoUri == "" && c.StorePath == "" {
		errs = append(errs, fmt.Errorf("one of %s or %s is required", EnvMongoUri, EnvStorePath))
	}
	if c.MonitoringPort == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvMonitoringPort))
	}
	if c.CloseGraceDelay < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvCloseGraceDelay))
	}
	if c.TranscriptFetchLimit < 1 || c.TranscriptFetchLimit > transcript.MaxFetchLimit {
		errs = append(errs, fmt.Errorf("%s must be between 1 and %d", EnvTranscriptFetchLimit, transcript.MaxFetchLimit))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvSessionTTL))
	}
	return errors.Join(errs...)
}

// logValues logs the configuration without secrets.
func (c *Config) logValues(l *slog.Logger) {
	backend := "file"
	if c.MongoUri != "" {
		backend = "mongo"
	}
	l.Info("Configuration loaded",
		slog.String("store", backend),
		slog.String("monitoring_port", c.MonitoringPort),
		slog.Duration("close_grace_delay", c.CloseGraceDelay),
		slog.Int("transcript_fetch_limit", c.TranscriptFetchLimit),
		slog.Duration("session_ttl", c.SessionTTL),
		slog.Int("create_rate_limit", c.CreateRateLimit),
	)
}

// provideConfig parses and validates the configuration of the process.
func provideConfig(l *slog.Logger) (*Config, error) {
	c, err := parseConfig(l, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("not all required configuration has been provided: %w", err)
	}
	c.logValues(l)
	return c, nil
}
