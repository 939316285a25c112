package config

import "time"

// Default configuration values.
const (
	defaultServiceName        = "brand-safety-audit"
	defaultServiceVersion     = "1.0.0"
	defaultServicePort        = 8090
	defaultConcurrency        = 4
	defaultOffHoursMultiplier = 2
	defaultWorkingHoursStart  = 5
	defaultWorkingHoursEnd    = 17
	defaultBatchSize          = 40
	defaultSubBatchSize       = 10
	defaultBatchLimit         = 500
	defaultRescoreThreshold   = 60
	defaultUpdateThresholdHrs = 72
	defaultMinSubscribers     = 1000
	defaultSearchLimit        = 10000
	defaultUpsertChunkSize    = 500
	defaultUpsertConcurrency  = 3
	defaultQueryRPS           = 20
	defaultLexiconTTLMinutes  = 30
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBUser             = "postgres"
	defaultDBName             = "brand_safety"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMaxIdleConns     = 5
	defaultESURL              = "http://localhost:9200"
	defaultESMaxRetries       = 3
	defaultESTimeoutSec       = 30
	defaultESVideoIndex       = "videos"
	defaultESChannelIndex     = "channels"
	defaultRedisURL           = "localhost:6379"
	defaultRescoreQueueKey    = "brand_safety:rescore"
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
)

// Config holds all configuration for the audit service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Audit         AuditConfig         `yaml:"audit"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"AUDIT_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"  yaml:"debug"`
}

// AuditConfig holds the tunables of the scoring and orchestration engine.
type AuditConfig struct {
	// Concurrency is the base worker pool size during working hours.
	// OffHoursMultiplier scales it outside the window bounded by
	// WorkingHoursStart and WorkingHoursEnd (local hours).
	Concurrency        int `env:"AUDIT_CONCURRENCY" yaml:"concurrency"`
	OffHoursMultiplier int `yaml:"off_hours_multiplier"`
	WorkingHoursStart  int `yaml:"working_hours_start"`
	WorkingHoursEnd    int `yaml:"working_hours_end"`

	// BatchSize is the page size pulled from the document store per cursor
	// advance; SubBatchSize is the per-worker slice of a page. BatchLimit is
	// the safety valve: a run exits after this many pages and resumes from
	// the persisted cursor next time.
	BatchSize    int `yaml:"batch_size"`
	SubBatchSize int `yaml:"sub_batch_size"`
	BatchLimit   int `yaml:"batch_limit"`

	// RescoreThreshold queues a video's channel for rescoring when the video
	// scores below it.
	RescoreThreshold int `yaml:"rescore_threshold"`
	// UpdateThreshold is the freshness window for update mode.
	UpdateThreshold time.Duration `yaml:"update_threshold"`
	// MinSubscribers gates discovery and update to channels worth scoring.
	MinSubscribers int64 `yaml:"min_subscribers"`

	// SearchLimit caps per-query hits when fetching a channel's videos.
	SearchLimit int `yaml:"search_limit"`
	// Result batches at or below UpsertChunkSize are written directly,
	// larger ones are split across UpsertConcurrency workers.
	UpsertChunkSize   int `yaml:"upsert_chunk_size"`
	UpsertConcurrency int `yaml:"upsert_concurrency"`
	// QueryRPS rate-limits document store queries.
	QueryRPS int `yaml:"query_rps"`

	// LexiconCacheTTL bounds the on-disk lexicon snapshot; expired snapshots
	// are recompiled from the configuration store. LexiconCacheDir defaults
	// to the OS temp dir.
	LexiconCacheTTL time.Duration `yaml:"lexicon_cache_ttl"`
	LexiconCacheDir string        `env:"LEXICON_CACHE_DIR" yaml:"lexicon_cache_dir"`
}

// DatabaseConfig holds configuration-store database settings.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ElasticsearchConfig holds document-store settings.
type ElasticsearchConfig struct {
	URL          string        `env:"ELASTICSEARCH_URL" yaml:"url"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	MaxRetries   int           `yaml:"max_retries"`
	Timeout      time.Duration `yaml:"timeout"`
	VideoIndex   string        `yaml:"video_index"`
	ChannelIndex string        `yaml:"channel_index"`
}

// RedisConfig holds rescore-queue settings.
type RedisConfig struct {
	URL             string `env:"REDIS_URL"      yaml:"url"`
	Password        string `env:"REDIS_PASSWORD" yaml:"password"`
	Database        int    `yaml:"database"`
	RescoreQueueKey string `yaml:"rescore_queue_key"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path, applies defaults, and
// re-applies environment overrides so env always wins over file and default.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	SetDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a configuration built from defaults and environment
// overrides alone, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// SetDefaults applies default values to the config.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setAuditDefaults(&cfg.Audit)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setAuditDefaults(a *AuditConfig) {
	if a.Concurrency == 0 {
		a.Concurrency = defaultConcurrency
	}
	if a.OffHoursMultiplier == 0 {
		a.OffHoursMultiplier = defaultOffHoursMultiplier
	}
	if a.WorkingHoursStart == 0 {
		a.WorkingHoursStart = defaultWorkingHoursStart
	}
	if a.WorkingHoursEnd == 0 {
		a.WorkingHoursEnd = defaultWorkingHoursEnd
	}
	if a.BatchSize == 0 {
		a.BatchSize = defaultBatchSize
	}
	if a.SubBatchSize == 0 {
		a.SubBatchSize = defaultSubBatchSize
	}
	if a.BatchLimit == 0 {
		a.BatchLimit = defaultBatchLimit
	}
	if a.RescoreThreshold == 0 {
		a.RescoreThreshold = defaultRescoreThreshold
	}
	if a.UpdateThreshold == 0 {
		a.UpdateThreshold = defaultUpdateThresholdHrs * time.Hour
	}
	if a.MinSubscribers == 0 {
		a.MinSubscribers = defaultMinSubscribers
	}
	if a.SearchLimit == 0 {
		a.SearchLimit = defaultSearchLimit
	}
	if a.UpsertChunkSize == 0 {
		a.UpsertChunkSize = defaultUpsertChunkSize
	}
	if a.UpsertConcurrency == 0 {
		a.UpsertConcurrency = defaultUpsertConcurrency
	}
	if a.QueryRPS == 0 {
		a.QueryRPS = defaultQueryRPS
	}
	if a.LexiconCacheTTL == 0 {
		a.LexiconCacheTTL = defaultLexiconTTLMinutes * time.Minute
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
	if e.VideoIndex == "" {
		e.VideoIndex = defaultESVideoIndex
	}
	if e.ChannelIndex == "" {
		e.ChannelIndex = defaultESChannelIndex
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.URL == "" {
		r.URL = defaultRedisURL
	}
	if r.RescoreQueueKey == "" {
		r.RescoreQueueKey = defaultRescoreQueueKey
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
