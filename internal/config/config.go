package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	HTTPPort string

	MongoURI string
	MongoDB  string

	UserDBDriver string // "sqlite" | "pgx"
	UserDBDSN    string

	RedisAddr string
	CacheTTL  time.Duration

	UseKafka      bool
	KafkaBrokers  []string
	KafkaGroupID  string
	OutboxPeriod  time.Duration
	OutboxLimit   int
	ClickHouseDSN string
	ClickHouseDB  string
	ActivityBatch int
	ActivityFlush time.Duration

	JWTSecret        string
	JWTExpire        time.Duration
	JWTCookieExpire  time.Duration
	GeocoderURL      string
	GeocoderAPIKey   string
	MinioEndpoint    string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioBucket      string
	MinioUseSSL      bool
	FileUploadPath   string
	MaxFileUpload    int64
	RateLimitPerMin  int
	RateLimitBurst   int
	ResetURLTemplate string
}

// LoadConfig lee .env / config/config.env si existen y después el entorno.
// Las variables ya definidas en el entorno tienen prioridad sobre los ficheros.
func LoadConfig() *Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config/config.env")

	return &Config{
		AppEnv:   getEnv("APP_ENV", "production"),
		HTTPPort: getEnv("HTTP_PORT", "5000"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDB:  getEnv("MONGO_DB", "devcamper"),

		UserDBDriver: getEnv("USER_DB_DRIVER", "sqlite"),
		UserDBDSN:    getEnv("USER_DB_DSN", "./devcamper_users.db"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDuration("CACHE_TTL", 5*time.Minute),

		UseKafka:      getBool("USE_KAFKA", false),
		KafkaBrokers:  strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "devcamper"),
		OutboxPeriod:  getDuration("OUTBOX_PERIOD", time.Second),
		OutboxLimit:   getInt("OUTBOX_LIMIT", 10),
		ClickHouseDSN: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:  getEnv("CLICKHOUSE_DB", "devcamper"),
		ActivityBatch: getInt("ACTIVITY_BATCH", 100),
		ActivityFlush: getDuration("ACTIVITY_FLUSH", 5*time.Second),

		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		JWTExpire:        getDuration("JWT_EXPIRE", 30*24*time.Hour),
		JWTCookieExpire:  time.Duration(getInt("JWT_COOKIE_EXPIRE_DAYS", 30)) * 24 * time.Hour,
		GeocoderURL:      getEnv("GEOCODER_URL", "https://www.mapquestapi.com"),
		GeocoderAPIKey:   getEnv("GEOCODER_API_KEY", ""),
		MinioEndpoint:    getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:      getEnv("MINIO_BUCKET", "bootcamp-photos"),
		MinioUseSSL:      getBool("MINIO_USE_SSL", false),
		FileUploadPath:   getEnv("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxFileUpload:    int64(getInt("MAX_FILE_UPLOAD", 1000000)),
		RateLimitPerMin:  getInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 20),
		ResetURLTemplate: getEnv("RESET_URL", "http://localhost:5000/api/v1/auth/resetpassword/%s"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}
