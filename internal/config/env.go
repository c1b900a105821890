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

const (
	VectorBackendMemory   = "memory"
	VectorBackendPgvector = "pgvector"

	StagingNone  = "none"
	StagingLocal = "local"
	StagingS3    = "s3"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	AIAPIKey     string
	EmbedModel   string
	GenModel     string
	EmbedTimeout time.Duration
	GenTimeout   time.Duration

	RetrievalTopK      int
	ChunkTargetTokens  int
	ChunkOverlapTokens int
	EmbedBatchSize     int
	EmbedConcurrency   int
	MaxFragmentLen     int

	VectorBackend string
	DatabaseURL   string

	StagingBackend string
	StagingDir     string
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string

	PhoneDefaultRegion string
	SessionTTL         time.Duration
	MaxUploadMB        int

	LogLevel  string
	LogFormat string
}

// LoadConfig loads the environment variables (and .env when present) and returns config.
func LoadConfig() (*Config, error) {

	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8888"}),

		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:     getEnv("GEN_MODEL", "gemini-2.0-flash"),
		EmbedTimeout: getEnvDuration("EMBED_TIMEOUT", 30*time.Second),
		GenTimeout:   getEnvDuration("GEN_TIMEOUT", 60*time.Second),

		RetrievalTopK:      getEnvInt("RETRIEVAL_TOP_K", 4),
		ChunkTargetTokens:  getEnvInt("CHUNK_TARGET_TOKENS", 100),
		ChunkOverlapTokens: getEnvInt("CHUNK_OVERLAP_TOKENS", 5),
		EmbedBatchSize:     getEnvInt("EMBED_BATCH_SIZE", 16),
		EmbedConcurrency:   getEnvInt("EMBED_CONCURRENCY", 4),
		MaxFragmentLen:     getEnvInt("MAX_FRAGMENT_LEN", 2000),

		VectorBackend: strings.ToLower(getEnv("VECTOR_BACKEND", VectorBackendMemory)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		StagingBackend: strings.ToLower(getEnv("STAGING_BACKEND", StagingNone)),
		StagingDir:     getEnv("STAGING_DIR", os.TempDir()),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", ""),

		PhoneDefaultRegion: strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "")),
		SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 50),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot be wired together.
func (c *Config) Validate() error {
	var errs []error

	switch c.VectorBackend {
	case VectorBackendMemory:
	case VectorBackendPgvector:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL not set (required by VECTOR_BACKEND=pgvector)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VECTOR_BACKEND %q", c.VectorBackend))
	}

	switch c.StagingBackend {
	case StagingNone, StagingLocal:
	case StagingS3:
		if c.BucketName == "" {
			errs = append(errs, errors.New("BUCKET_NAME not set (required by STAGING_BACKEND=s3)"))
		}
		if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			errs = append(errs, errors.New("AWS credentials not set (required by STAGING_BACKEND=s3)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STAGING_BACKEND %q", c.StagingBackend))
	}

	if c.RetrievalTopK <= 0 {
		errs = append(errs, errors.New("RETRIEVAL_TOP_K must be positive"))
	}
	if c.EmbedBatchSize <= 0 {
		errs = append(errs, errors.New("EMBED_BATCH_SIZE must be positive"))
	}
	if c.ChunkTargetTokens <= 0 {
		errs = append(errs, errors.New("CHUNK_TARGET_TOKENS must be positive"))
	}

	return errors.Join(errs...)
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARN: %s=%q not an int, using default %d\n", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARN: %s=%q not a duration, using default %s\n", key, v, def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
