// Package config loads the runtime configuration of the sync tool from the
// environment (populated from .env in main) and command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted for the source and target sides.
const (
	BackendNCB   = "ncb"
	BackendMongo = "mongo"
	BackendSQL   = "sql"
)

// Default values.
const (
	DefaultBaseURL        = "https://app.nocodebackend.com/api/data"
	DefaultSourceInstance = "bangtanmom_legacy"
	DefaultCollection     = "posts"
	DefaultFetchLimit     = 2000
	DefaultRunTimeout     = 5 * time.Minute
	DefaultClientTimeout  = 30 * time.Second
	DefaultListenAddr     = ":8080"
)

// Viper keys and the environment variables they are bound to.
var envBindings = map[string]string{
	"api_key":                 "NCB_API_KEY",
	"base_url":                "NCB_BASE_URL",
	"target_instance":         "NCB_TARGET_INSTANCE",
	"source_instance":         "NCB_SOURCE_INSTANCE",
	"collection":              "MIGRATE_COLLECTION",
	"fetch_limit":             "MIGRATE_FETCH_LIMIT",
	"run_timeout":             "MIGRATE_RUN_TIMEOUT",
	"continue_on_write_error": "MIGRATE_CONTINUE_ON_WRITE_ERROR",
	"mapping_file":            "MIGRATE_MAPPING_FILE",
	"source_backend":          "SOURCE_BACKEND",
	"target_backend":          "TARGET_BACKEND",
	"mongo_connection_string": "MONGO_CONNECTION_STRING",
	"sql_connection_string":   "SQL_CONNECTION_STRING",
	"http_client_timeout":     "HTTP_CLIENT_TIMEOUT",
	"listen_addr":             "LISTEN_ADDR",
}

// Config holds all configuration for the application.
type Config struct {
	APIKey         string
	BaseURL        string
	TargetInstance string
	SourceInstance string
	// Collection is left empty when unset; ApplyMapping then fills it.
	Collection string
	FetchLimit int

	// RunTimeout bounds a whole migration run. Zero disables it.
	RunTimeout           time.Duration
	ContinueOnWriteError bool
	MappingFile          string

	SourceBackend   string
	TargetBackend   string
	MongoConnString string
	SQLConnString   string

	ClientTimeout time.Duration
	ListenAddr    string
}

// ConfigError reports missing or invalid settings. It aborts a run before any
// backend is contacted.
type ConfigError struct {
	Missing []string
	Reason  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
	}
	return "invalid configuration: " + e.Reason
}

// NewViper returns a viper instance with defaults and environment bindings set.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, env := range envBindings {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key, env)
	}
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("source_instance", DefaultSourceInstance)
	v.SetDefault("fetch_limit", DefaultFetchLimit)
	v.SetDefault("run_timeout", DefaultRunTimeout)
	v.SetDefault("source_backend", BackendNCB)
	v.SetDefault("target_backend", BackendNCB)
	v.SetDefault("http_client_timeout", DefaultClientTimeout)
	v.SetDefault("listen_addr", DefaultListenAddr)
	return v
}

// Load reads the configuration from v. It does not validate it: a missing
// target instance is reported when a run starts.
func Load(v *viper.Viper) *Config {
	return &Config{
		APIKey:               strings.TrimSpace(v.GetString("api_key")),
		BaseURL:              strings.TrimRight(v.GetString("base_url"), "/"),
		TargetInstance:       strings.TrimSpace(v.GetString("target_instance")),
		SourceInstance:       strings.TrimSpace(v.GetString("source_instance")),
		Collection:           strings.TrimSpace(v.GetString("collection")),
		FetchLimit:           v.GetInt("fetch_limit"),
		RunTimeout:           v.GetDuration("run_timeout"),
		ContinueOnWriteError: v.GetBool("continue_on_write_error"),
		MappingFile:          v.GetString("mapping_file"),
		SourceBackend:        strings.ToLower(v.GetString("source_backend")),
		TargetBackend:        strings.ToLower(v.GetString("target_backend")),
		MongoConnString:      v.GetString("mongo_connection_string"),
		SQLConnString:        v.GetString("sql_connection_string"),
		ClientTimeout:        v.GetDuration("http_client_timeout"),
		ListenAddr:           v.GetString("listen_addr"),
	}
}

// Validate checks the settings a migration run cannot do without.
func (c *Config) Validate() error {
	var missing []string
	if c.usesBackend(BackendNCB) && c.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if c.TargetInstance == "" {
		missing = append(missing, "targetInstance")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}

	for _, b := range []string{c.SourceBackend, c.TargetBackend} {
		switch b {
		case BackendNCB, BackendMongo, BackendSQL:
		default:
			return &ConfigError{Reason: fmt.Sprintf("unknown backend %q", b)}
		}
	}
	if c.FetchLimit <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("fetch limit must be positive, got %d", c.FetchLimit)}
	}
	return nil
}

func (c *Config) usesBackend(name string) bool {
	return c.SourceBackend == name || c.TargetBackend == name
}
