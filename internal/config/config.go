package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	AppName   string          `yaml:"app_name" env:"APP_NAME" env-default:"catalog-service"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Store     StoreConfig     `yaml:"store"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Auth      AuthConfig      `yaml:"auth"`
	Logger    LoggerConfig    `yaml:"logger"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

type GRPCConfig struct {
	Port            string        `yaml:"port" env:"GRPC_PORT" env-default:"50052"`
	Timeout         time.Duration `yaml:"timeout" env:"GRPC_TIMEOUT" env-default:"5s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"GRPC_TIMEOUT_GRACEFUL" env-default:"15s"`
	Reflection      bool          `yaml:"reflection" env:"GRPC_REFLECTION" env-default:"true"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"mongo"`
	// SeedFile is a JSON array of listings created at startup. Empty skips seeding.
	SeedFile string `yaml:"seed_file" env:"STORE_SEED_FILE"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"catalog_service_db"`
}

type PostgresConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"10"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"LISTING_CACHE_TTL" env-default:"5m"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled" env:"NATS_ENABLED" env-default:"true"`
	URL     string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type MinIOConfig struct {
	Enabled   bool          `yaml:"enabled" env:"MINIO_ENABLED" env-default:"false"`
	Endpoint  string        `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string        `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string        `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string        `yaml:"bucket" env:"MINIO_BUCKET" env-default:"listings-photos"`
	Region    string        `yaml:"region" env:"MINIO_REGION" env-default:"us-east-1"`
	UseSSL    bool          `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	URLExpiry time.Duration `yaml:"url_expiry" env:"MINIO_URL_EXPIRY" env-default:"15m"`
}

type AuthConfig struct {
	// JWTSecret empty disables token parsing; every caller is anonymous.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	AdminRole string `yaml:"admin_role" env:"AUTH_ADMIN_ROLE" env-default:"admin"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	OutputFile string `yaml:"output_file" env:"LOG_OUTPUT_FILE" env-default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"30"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Addr    string `yaml:"addr" env:"METRICS_ADDR" env-default:":9102"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	SampleRatio  float64 `yaml:"sample_ratio" env:"TRACING_SAMPLE_RATIO" env-default:"1"`
}

// DiscoveryConfig caps the shortlist endpoints. The engine itself accepts any limit.
type DiscoveryConfig struct {
	ShortlistDefault int `yaml:"shortlist_default" env:"DISCOVERY_SHORTLIST_DEFAULT" env-default:"8"`
	ShortlistMax     int `yaml:"shortlist_max" env:"DISCOVERY_SHORTLIST_MAX" env-default:"50"`
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required for the mongo store"))
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("postgres.url is required for the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of mongo, postgres, memory", c.Store.Driver))
	}

	if c.Discovery.ShortlistMax <= 0 {
		errs = append(errs, errors.New("discovery.shortlist_max must be positive"))
	}
	if c.Discovery.ShortlistDefault <= 0 || c.Discovery.ShortlistDefault > c.Discovery.ShortlistMax {
		errs = append(errs, errors.New("discovery.shortlist_default must be between 1 and shortlist_max"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("tracing.sample_ratio must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads .env, then the YAML file at path when it exists, then the
// environment. Environment values win over the file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		err := cleanenv.ReadConfig(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Warning: config file not found at %s, loading from environment only", path)
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is not set, owner and admin lookups of unpublished listings are disabled")
	}
	return cfg
}
