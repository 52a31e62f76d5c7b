package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Report sources.
const (
	SourceKafka = "kafka"
	SourceDir   = "dir"
)

// Building store backends.
const (
	BackendNone      = "none"
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendPostgres  = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Report input.
	ReportSource   string
	ReportDir      string
	ReportDirWatch bool
	BuildingsFile  string
	MaxReportLines int
	InspectionYear string

	// Building document population.
	StoreBackend          string
	StoreCacheSize        int
	PopulateCreateMissing bool

	FirestoreProject string
	FirestoreAPIKey  string
	FirestoreAppID   string
	FirestoreTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	firestoreTimeout, err := parseDuration("FIRESTORE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	maxLines, err := parsePositiveInt("MAX_REPORT_LINES", domain.DefaultMaxReportLines)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("STORE_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	redisDB, err := parseNonNegativeInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	reportDirWatch, err := parseBool("REPORT_DIR_WATCH")
	if err != nil {
		return nil, err
	}
	createMissing, err := parseBool("POPULATE_CREATE_MISSING")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-inspection-reports"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "parsed-inspection-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "fire-inspection-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ReportSource:   strings.ToLower(sharedcfg.EnvOrDefault("REPORT_SOURCE", SourceKafka)),
		ReportDir:      os.Getenv("REPORT_DIR"),
		ReportDirWatch: reportDirWatch,
		BuildingsFile:  os.Getenv("BUILDINGS_FILE"),
		MaxReportLines: maxLines,
		InspectionYear: sharedcfg.EnvOrDefault("INSPECTION_YEAR", "2025"),

		StoreBackend:          strings.ToLower(sharedcfg.EnvOrDefault("STORE_BACKEND", BackendNone)),
		StoreCacheSize:        cacheSize,
		PopulateCreateMissing: createMissing,

		FirestoreProject: os.Getenv("FIRESTORE_PROJECT"),
		FirestoreAPIKey:  os.Getenv("FIRESTORE_API_KEY"),
		FirestoreAppID:   sharedcfg.EnvOrDefault("FIRESTORE_APP_ID", "welling-fm"),
		FirestoreTimeout: firestoreTimeout,

		RedisAddr:     sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ReportSource {
	case SourceKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	case SourceDir:
		if c.ReportDir == "" {
			return errors.New("REPORT_DIR is required when REPORT_SOURCE is dir")
		}
	default:
		return fmt.Errorf("invalid REPORT_SOURCE %q: must be kafka or dir", c.ReportSource)
	}

	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}

	if _, err := strconv.Atoi(c.InspectionYear); err != nil || len(c.InspectionYear) != 4 {
		return fmt.Errorf("invalid INSPECTION_YEAR %q: must be a four digit year", c.InspectionYear)
	}

	switch c.StoreBackend {
	case BackendNone:
	case BackendFirestore:
		if c.FirestoreProject == "" {
			return errors.New("FIRESTORE_PROJECT is required when STORE_BACKEND is firestore")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when STORE_BACKEND is redis")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORE_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: must be none, firestore, redis or postgres", c.StoreBackend)
	}
	return nil
}

// StoreEnabled reports whether parsed reports are merged into building documents.
func (c *Config) StoreEnabled() bool {
	return c.StoreBackend != BackendNone
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", key)
	}
	return n, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}
