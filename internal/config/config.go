package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	OTP      OTPConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type StorageConfig struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

// IngestConfig drives the bulk career upload. DefaultCityID and
// DefaultInstituteTypeID are applied to every institute the pipeline creates.
type IngestConfig struct {
	Workers                int
	LockTTL                time.Duration
	DefaultCityID          int64
	DefaultInstituteTypeID int64
	YoutubeThumbnails      bool
	ThumbnailTimeout       time.Duration
}

type OTPConfig struct {
	Length         int
	TTL            time.Duration
	MaxAttempts    int
	LockDuration   time.Duration
	MaxSendsPerDay int
	ExposeInReply  bool
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads the process environment. A .env file in the working directory,
// when present, is loaded first without overriding variables already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		CORSOrigins: splitList(opt("CORS_ORIGINS")),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             orDefault(opt("DB_SSL_MODE"), "disable"),
		ConnectTimeout:        durationSeconds(opt("DB_CONNECT_TIMEOUT"), 5*time.Second),
		PoolMaxConns:          int32(intOr(opt("DB_POOL_MAX_CONNS"), 10)),
		PoolMinConns:          int32(intOr(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   durationSeconds(opt("DB_POOL_MAX_CONN_LIFETIME"), 0),
		PoolMaxConnIdleTime:   durationSeconds(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 0),
		PoolHealthCheckPeriod: durationSeconds(opt("DB_POOL_HEALTH_CHECK_PERIOD"), 0),
		MigrationsDir:         opt("DB_MIGRATIONS_DIR"),
	}

	cfg.Mongo = MongoConfig{
		URI:      orDefault(opt("MONGO_URI"), "mongodb://localhost:27017"),
		Database: orDefault(opt("MONGO_DATABASE"), "i4e"),
	}

	cfg.Redis = RedisConfig{
		Host:     orDefault(opt("REDIS_HOST"), "localhost"),
		Port:     orDefault(opt("REDIS_PORT"), "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      durationSeconds(opt("REDIS_TTL"), 600*time.Second),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  durationSeconds(opt("JWT_ACCESS_EXPIRES_IN"), 15*time.Minute),
		RefreshExpiresIn: durationSeconds(opt("JWT_REFRESH_EXPIRES_IN"), 7*24*time.Hour),
	}

	cfg.Storage = StorageConfig{
		Bucket:          opt("GCS_BUCKET"),
		CredentialsFile: opt("GCS_CREDENTIALS_FILE"),
		PublicBaseURL:   orDefault(opt("GCS_PUBLIC_BASE_URL"), "https://storage.googleapis.com"),
	}

	cfg.Ingest = IngestConfig{
		Workers:                intOr(opt("INGEST_WORKERS"), 4),
		LockTTL:                durationSeconds(opt("INGEST_LOCK_TTL"), 30*time.Minute),
		DefaultCityID:          int64(intOr(opt("INGEST_DEFAULT_CITY_ID"), 249)),
		DefaultInstituteTypeID: int64(intOr(opt("INGEST_DEFAULT_INSTITUTE_TYPE_ID"), 2)),
		YoutubeThumbnails:      boolOr(opt("YOUTUBE_THUMBNAILS"), false),
		ThumbnailTimeout:       durationSeconds(opt("YOUTUBE_THUMBNAIL_TIMEOUT"), 5*time.Second),
	}

	cfg.OTP = OTPConfig{
		Length:         intOr(opt("OTP_LENGTH"), 6),
		TTL:            durationSeconds(opt("OTP_TTL"), 5*time.Minute),
		MaxAttempts:    intOr(opt("OTP_MAX_ATTEMPTS"), 5),
		LockDuration:   durationSeconds(opt("OTP_LOCK_DURATION"), 2*time.Hour),
		MaxSendsPerDay: intOr(opt("OTP_MAX_SENDS_PER_DAY"), 10),
		ExposeInReply:  boolOr(opt("OTP_EXPOSE_IN_REPLY"), false),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	env := strings.ToLower(c.App.Environment)
	return env == "production" || env == "prod"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// durationSeconds accepts either a Go duration ("90s", "2h") or a plain
// number of seconds.
func durationSeconds(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
