package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	AdminUser     string
	AdminPassHash string
	TokenSecret   string
	TokenTTL      time.Duration
	DNISalt       string

	RedisURL        string
	ResultsCacheTTL time.Duration

	StorageBackend string
	StorageDir     string
	GCSBucket      string
	PublicBaseURL  string

	SeedDemo  bool
	Precision float64
}

// ParseFlags loads .env, validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// A missing .env is fine; variables already set in the environment win
	_ = godotenv.Load()

	fs := flag.NewFlagSet("encuestape", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the results cache (optional)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminUser, "admin-user", "", "Admin user name")
	fs.StringVar(&cfg.AdminPassHash, "admin-pass-hash", "", "SHA-256 hex of the admin password (prefer env)")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Admin token HMAC secret (prefer env)")
	fs.StringVar(&cfg.DNISalt, "dni-salt", "", "DNI hash salt (prefer env)")

	fs.StringVar(&cfg.StorageBackend, "storage", "", "Image storage backend (local or gcs)")
	fs.BoolVar(&cfg.SeedDemo, "seed", false, "Seed the demo dataset")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	if cfg.AdminUser == "" {
		cfg.AdminUser = os.Getenv("ADMIN_USER")
		if cfg.AdminUser == "" {
			cfg.AdminUser = "admin"
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminPassHash == "" {
		cfg.AdminPassHash = os.Getenv("ADMIN_PASS_HASH")
	}
	if cfg.AdminPassHash == "" {
		return Config{}, errors.New("ADMIN_PASS_HASH required")
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}

	if cfg.DNISalt == "" {
		cfg.DNISalt = os.Getenv("DNI_SALT")
	}
	if cfg.DNISalt == "" {
		return Config{}, errors.New("DNI_SALT required")
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ResultsCacheTTL, err = durationEnv("RESULTS_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.StorageBackend == "" {
		cfg.StorageBackend = os.Getenv("STORAGE_BACKEND")
		if cfg.StorageBackend == "" {
			cfg.StorageBackend = StorageLocal
		}
	}
	cfg.StorageDir = envOr("STORAGE_DIR", "uploads")
	cfg.PublicBaseURL = envOr("PUBLIC_BASE_URL", "/uploads")
	cfg.GCSBucket = os.Getenv("GCS_BUCKET")
	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageGCS:
		if cfg.GCSBucket == "" {
			return Config{}, errors.New("GCS_BUCKET required for gcs storage")
		}
	default:
		return Config{}, errors.New("STORAGE_BACKEND must be local or gcs")
	}

	if !cfg.SeedDemo {
		if s := os.Getenv("SEED_DEMO"); s != "" {
			seed, err := strconv.ParseBool(s)
			if err != nil {
				return Config{}, errors.New("invalid SEED_DEMO env variable")
			}
			cfg.SeedDemo = seed
		}
	}

	cfg.Precision = 95
	if s := os.Getenv("PRECISION"); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil || p < 0 || p > 100 {
			return Config{}, errors.New("invalid PRECISION env variable")
		}
		cfg.Precision = p
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return d, nil
}
