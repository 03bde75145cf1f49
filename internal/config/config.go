package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
)

const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// ProviderConfig holds the settings shared by every upstream client.
type ProviderConfig struct {
	Enabled       bool
	BaseURL       string
	Token         string
	Host          string
	RateLimit     int
	RateWindow    time.Duration
	Timeout       time.Duration
	MaxRetries    int
	BlockOnBudget bool
	Priority      int
	LeagueIDs     map[string]int64
	Season        int
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	DBURL              string
	DBAutoMigrate      bool
	DBDisablePrepared  bool
	DBMigrationsDir    string
	CacheEnabled       bool
	CacheTTL           time.Duration
	CORSAllowedOrigins []string
	CronSecret         string
	TeamAliasFile      string

	FootballData    ProviderConfig
	APIFootball     ProviderConfig
	ProviderCircuit resilience.CircuitBreakerConfig

	IngestCompetitions       []string
	IngestLookbackDays       int
	IngestLookaheadDays      int
	IngestMultiSource        bool
	IngestCompetitionDelay   time.Duration
	IngestBackfillDelay      time.Duration
	IngestScoreRefreshDelay  time.Duration
	IngestScoreRefreshWindow time.Duration

	SchedulerEnabled    bool
	SchedulerInterval   time.Duration
	SchedulerRunOnStart bool
	JobPoolSize         int

	RunLockBackend string
	RedisURL       string
	RunLockTTL     time.Duration

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func (c Config) IsDev() bool {
	return c.AppEnv == EnvDev
}

// ProviderPriorities orders sources for merging; lower wins.
func (c Config) ProviderPriorities() map[string]int {
	return map[string]int{
		match.SourceFootballData: c.FootballData.Priority,
		match.SourceAPIFootball:  c.APIFootball.Priority,
	}
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "matchsync"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		DBMigrationsDir:            getEnv("DB_MIGRATIONS_DIR", "db/migrations"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		CronSecret:                 strings.TrimSpace(getEnv("CRON_SECRET", "")),
		TeamAliasFile:              strings.TrimSpace(getEnv("TEAM_ALIAS_FILE", "")),
		IngestCompetitions:         splitCSV(getEnv("INGEST_COMPETITIONS", "PL,PD,SA,BL1,FL1,CL")),
		RunLockBackend:             strings.ToLower(strings.TrimSpace(getEnv("RUN_LOCK_BACKEND", LockBackendMemory))),
		RedisURL:                   strings.TrimSpace(getEnv("REDIS_URL", "")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", false); err != nil {
		return Config{}, err
	}
	if cfg.DBDisablePrepared, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", false); err != nil {
		return Config{}, err
	}
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", 60*time.Second); err != nil {
		return Config{}, err
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if appEnv != EnvDev && cfg.CronSecret == "" {
		return Config{}, fmt.Errorf("CRON_SECRET is required when APP_ENV=%s", appEnv)
	}

	if cfg.FootballData, err = loadProvider("FOOTBALL_DATA", providerDefaults{
		baseURL:    "https://api.football-data.org/v4",
		rateLimit:  10,
		rateWindow: time.Minute,
		priority:   1,
	}); err != nil {
		return Config{}, err
	}
	if cfg.APIFootball, err = loadProvider("API_FOOTBALL", providerDefaults{
		baseURL:    "https://v3.football.api-sports.io",
		rateLimit:  100,
		rateWindow: time.Minute,
		priority:   2,
	}); err != nil {
		return Config{}, err
	}
	cfg.APIFootball.Host = strings.TrimSpace(getEnv("API_FOOTBALL_HOST", ""))
	if cfg.APIFootball.LeagueIDs, err = parseIDMap(getEnv("API_FOOTBALL_LEAGUE_ID_MAP", "PL:39,PD:140,SA:135,BL1:78,FL1:61,CL:2")); err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_LEAGUE_ID_MAP: %w", err)
	}
	if cfg.APIFootball.Season, err = getEnvAsInt("API_FOOTBALL_SEASON", 0); err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_SEASON: %w", err)
	}
	if cfg.APIFootball.Season < 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_SEASON must be >= 0")
	}

	if cfg.ProviderCircuit, err = loadCircuit("PROVIDER_CIRCUIT"); err != nil {
		return Config{}, err
	}

	if cfg.IngestLookbackDays, err = getEnvAsInt("INGEST_LOOKBACK_DAYS", 1); err != nil {
		return Config{}, fmt.Errorf("parse INGEST_LOOKBACK_DAYS: %w", err)
	}
	if cfg.IngestLookaheadDays, err = getEnvAsInt("INGEST_LOOKAHEAD_DAYS", 7); err != nil {
		return Config{}, fmt.Errorf("parse INGEST_LOOKAHEAD_DAYS: %w", err)
	}
	if cfg.IngestLookbackDays < 0 || cfg.IngestLookaheadDays < 0 {
		return Config{}, fmt.Errorf("INGEST_LOOKBACK_DAYS and INGEST_LOOKAHEAD_DAYS must be >= 0")
	}
	if cfg.IngestMultiSource, err = getEnvAsBool("INGEST_MULTI_SOURCE", false); err != nil {
		return Config{}, err
	}
	if cfg.IngestCompetitionDelay, err = getEnvAsDuration("INGEST_COMPETITION_DELAY", 6*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IngestBackfillDelay, err = getEnvAsDuration("INGEST_BACKFILL_DELAY", 7*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IngestScoreRefreshDelay, err = getEnvAsDuration("INGEST_SCORE_REFRESH_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IngestScoreRefreshWindow, err = getEnvAsDuration("INGEST_SCORE_REFRESH_WINDOW", 24*time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.SchedulerEnabled, err = getEnvAsBool("SCHEDULER_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.SchedulerInterval, err = getEnvAsDuration("SCHEDULER_INTERVAL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SchedulerRunOnStart, err = getEnvAsBool("SCHEDULER_RUN_ON_START", true); err != nil {
		return Config{}, err
	}
	if cfg.JobPoolSize, err = getEnvAsInt("JOB_POOL_SIZE", 4); err != nil {
		return Config{}, fmt.Errorf("parse JOB_POOL_SIZE: %w", err)
	}
	if cfg.JobPoolSize < 1 {
		return Config{}, fmt.Errorf("JOB_POOL_SIZE must be >= 1")
	}

	switch cfg.RunLockBackend {
	case LockBackendMemory:
	case LockBackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when RUN_LOCK_BACKEND=redis")
		}
	default:
		return Config{}, fmt.Errorf("invalid RUN_LOCK_BACKEND %q: valid values are %s, %s", cfg.RunLockBackend, LockBackendMemory, LockBackendRedis)
	}
	if cfg.RunLockTTL, err = getEnvAsDuration("RUN_LOCK_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

type providerDefaults struct {
	baseURL    string
	rateLimit  int
	rateWindow time.Duration
	priority   int
}

func loadProvider(prefix string, defaults providerDefaults) (ProviderConfig, error) {
	var (
		out ProviderConfig
		err error
	)
	out.BaseURL = strings.TrimSpace(getEnv(prefix+"_BASE_URL", defaults.baseURL))
	out.Token = strings.TrimSpace(getEnv(prefix+"_TOKEN", ""))
	// A provider with a token is on unless switched off explicitly.
	if out.Enabled, err = getEnvAsBool(prefix+"_ENABLED", out.Token != ""); err != nil {
		return ProviderConfig{}, err
	}

	if out.RateLimit, err = getEnvAsInt(prefix+"_RATE_LIMIT", defaults.rateLimit); err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_RATE_LIMIT: %w", prefix, err)
	}
	if out.RateLimit < 1 {
		return ProviderConfig{}, fmt.Errorf("%s_RATE_LIMIT must be >= 1", prefix)
	}
	if out.RateWindow, err = getEnvAsDuration(prefix+"_RATE_WINDOW", defaults.rateWindow); err != nil {
		return ProviderConfig{}, err
	}
	if out.Timeout, err = getEnvAsDuration(prefix+"_TIMEOUT", 10*time.Second); err != nil {
		return ProviderConfig{}, err
	}
	if out.MaxRetries, err = getEnvAsInt(prefix+"_MAX_RETRIES", 2); err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_MAX_RETRIES: %w", prefix, err)
	}
	if out.MaxRetries < 0 {
		return ProviderConfig{}, fmt.Errorf("%s_MAX_RETRIES must be >= 0", prefix)
	}
	if out.BlockOnBudget, err = getEnvAsBool(prefix+"_BLOCK_ON_BUDGET", false); err != nil {
		return ProviderConfig{}, err
	}
	if out.Priority, err = getEnvAsInt(prefix+"_PRIORITY", defaults.priority); err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_PRIORITY: %w", prefix, err)
	}

	if out.Enabled && out.Token == "" {
		return ProviderConfig{}, fmt.Errorf("%s_TOKEN is required when %s_ENABLED=true", prefix, prefix)
	}
	return out, nil
}

func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	var (
		out resilience.CircuitBreakerConfig
		err error
	)
	if out.Enabled, err = getEnvAsBool(prefix+"_ENABLED", true); err != nil {
		return out, err
	}
	if out.FailureThreshold, err = getEnvAsInt(prefix+"_FAILURE_COUNT", 5); err != nil {
		return out, fmt.Errorf("parse %s_FAILURE_COUNT: %w", prefix, err)
	}
	if out.FailureThreshold < 1 {
		return out, fmt.Errorf("%s_FAILURE_COUNT must be >= 1", prefix)
	}
	if out.OpenTimeout, err = getEnvAsDuration(prefix+"_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return out, err
	}
	if out.HalfOpenMaxReq, err = getEnvAsInt(prefix+"_HALF_OPEN_MAX_REQ", 2); err != nil {
		return out, fmt.Errorf("parse %s_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if out.HalfOpenMaxReq < 1 {
		return out, fmt.Errorf("%s_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects zero and negative values.
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseIDMap reads "CODE:number" pairs, e.g. "PL:39,PD:140".
func parseIDMap(raw string) (map[string]int64, error) {
	out := make(map[string]int64)
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected code:number", item)
		}

		key := strings.ToUpper(strings.TrimSpace(segments[0]))
		if key == "" {
			return nil, fmt.Errorf("empty competition code in item %q", item)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(segments[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number in item %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0 in item %q", item)
		}

		out[key] = value
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
