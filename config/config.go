package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds file and environment driven configuration values.
type AppConfig struct {
	AppPort        string
	AllowedOrigins []string
	// Rate limiting: RateLimitRequests per RateLimitWindowSec per client IP
	RateLimitRequests  int
	RateLimitWindowSec int
	// TrustForwardedFor makes fingerprinting prefer X-Forwarded-For over the socket address.
	TrustForwardedFor  bool
	ShutdownTimeoutSec int
	// Database
	DBDriver    string
	DatabaseURI string
	DBPath      string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis read cache; disabled when RedisHost is empty
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	CacheTTLSec   int
	// Analytics
	RecentWindowHours int
	RecentLimit       int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Telemetry
	MetricsEnabled bool
	TracingEnabled bool
	ServiceName    string
}

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config/config.json"

// Load reads configuration with precedence: JSON file -> defaults -> environment overrides.
// A missing file is not an error; malformed JSON or invalid env values are.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	if path == "" {
		path = DefaultPath
	}

	// bool settings whose default is true must be tracked separately from the zero value
	seen, err := loadJSONConfig(path, &cfg)
	if err != nil {
		return AppConfig{}, fmt.Errorf("config %s: %w", path, err)
	}

	applyDefaults(&cfg, seen)

	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// CacheTTL returns the aggregate read cache lifetime.
func (c AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// RateLimitWindow returns the rate limit accounting window.
func (c AppConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSec) * time.Second
}

// RecentWindow returns the trailing window used by the recent activity aggregation.
func (c AppConfig) RecentWindow() time.Duration {
	return time.Duration(c.RecentWindowHours) * time.Hour
}

// ShutdownTimeout bounds how long in-flight requests get to drain.
func (c AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// RedisEnabled reports whether a Redis host was configured.
func (c AppConfig) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads grouped sections from path into out. It returns the set of
// boolean keys that were explicitly present so defaults do not clobber an explicit false.
func loadJSONConfig(path string, out *AppConfig) (map[string]bool, error) {
	seen := map[string]bool{}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return seen, nil
		}
		return seen, err
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return seen, err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case string:
				i, _ := strconv.Atoi(t)
				return i
			}
		}
		return 0
	}
	getBool := func(m map[string]any, section, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				seen[section+"."+key] = true
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		out.RateLimitRequests = getInt(app, "RateLimitRequests")
		out.RateLimitWindowSec = getInt(app, "RateLimitWindowSec")
		out.TrustForwardedFor = getBool(app, "app", "TrustForwardedFor")
		out.ShutdownTimeoutSec = getInt(app, "ShutdownTimeoutSec")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "Driver")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBPath = getString(dbs, "Path")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
		out.CacheTTLSec = getInt(rds, "CacheTTLSec")
	}

	if an, ok := raw["analytics"].(map[string]any); ok {
		out.RecentWindowHours = getInt(an, "RecentWindowHours")
		out.RecentLimit = getInt(an, "RecentLimit")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "log", "Compress")
	}

	if tm, ok := raw["telemetry"].(map[string]any); ok {
		out.MetricsEnabled = getBool(tm, "telemetry", "MetricsEnabled")
		out.TracingEnabled = getBool(tm, "telemetry", "TracingEnabled")
		out.ServiceName = getString(tm, "ServiceName")
	}

	return seen, nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig, seen map[string]bool) {
	if c.AppPort == "" {
		c.AppPort = "3000"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimitRequests == 0 {
		c.RateLimitRequests = 100
	}
	if c.RateLimitWindowSec == 0 {
		c.RateLimitWindowSec = 15 * 60
	}
	if !seen["app.TrustForwardedFor"] {
		c.TrustForwardedFor = true
	}
	if c.ShutdownTimeoutSec == 0 {
		c.ShutdownTimeoutSec = 30
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	c.DBDriver = strings.ToLower(c.DBDriver)
	if c.DBPath == "" {
		c.DBPath = "./likes.db"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		switch c.DBDriver {
		case "postgres":
			c.DBPort = "5432"
		default:
			c.DBPort = "3306"
		}
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "engagement"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.CacheTTLSec == 0 {
		c.CacheTTLSec = 30
	}
	if c.RecentWindowHours == 0 {
		c.RecentWindowHours = 24
	}
	if c.RecentLimit == 0 {
		c.RecentLimit = 10
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if !seen["telemetry.MetricsEnabled"] {
		c.MetricsEnabled = true
	}
	if c.ServiceName == "" {
		c.ServiceName = "engagement"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	intVar := func(key string, dst *int) {
		if v := getEnv(key, ""); v != "" {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid integer value %s=%q: %w", key, v, err))
				return
			}
			*dst = i
		}
	}
	boolVar := func(key string, dst *bool) {
		if v := getEnv(key, ""); v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid boolean value %s=%q: %w", key, v, err))
				return
			}
			*dst = b
		}
	}
	strVar := func(key string, dst *string) {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}

	// PORT is what the original deployment used
	strVar("PORT", &c.AppPort)
	strVar("APP_PORT", &c.AppPort)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	intVar("RATE_LIMIT_REQUESTS", &c.RateLimitRequests)
	intVar("RATE_LIMIT_WINDOW_SEC", &c.RateLimitWindowSec)
	boolVar("TRUST_FORWARDED_FOR", &c.TrustForwardedFor)
	intVar("SHUTDOWN_TIMEOUT_SEC", &c.ShutdownTimeoutSec)

	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = strings.ToLower(v)
	}
	strVar("DATABASE_URI", &c.DatabaseURI)
	strVar("DB_PATH", &c.DBPath)
	strVar("DB_HOST", &c.DBHost)
	strVar("DB_PORT", &c.DBPort)
	strVar("DB_USER", &c.DBUser)
	strVar("DB_PASSWORD", &c.DBPassword)
	strVar("DB_NAME", &c.DBName)

	strVar("REDIS_HOST", &c.RedisHost)
	intVar("REDIS_PORT", &c.RedisPort)
	intVar("REDIS_DB", &c.RedisDB)
	strVar("REDIS_PASSWORD", &c.RedisPassword)
	intVar("CACHE_TTL_SEC", &c.CacheTTLSec)

	intVar("RECENT_WINDOW_HOURS", &c.RecentWindowHours)
	intVar("RECENT_LIMIT", &c.RecentLimit)

	strVar("GIN_MODE", &c.GinMode)
	strVar("GIN_PATH", &c.GinPath)

	strVar("LOG_LEVEL", &c.LogLevel)
	strVar("LOG_PATH", &c.LogPath)
	intVar("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	intVar("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	intVar("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	boolVar("LOG_COMPRESS", &c.LogCompress)

	boolVar("METRICS_ENABLED", &c.MetricsEnabled)
	boolVar("TRACING_ENABLED", &c.TracingEnabled)
	strVar("SERVICE_NAME", &c.ServiceName)

	return errors.Join(errs...)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
