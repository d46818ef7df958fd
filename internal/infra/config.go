package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// Veo generation service. VEO_API_KEY is required for real generation;
	// VEO_API_KEY2..VEO_API_KEY9 extend the credential rotation pool.
	VeoAPIKeys []string
	VeoModel   string
	VeoBaseURL string

	// Gemini auxiliary model: prompt refinement, research, script
	// generation and footage analysis.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Video search index.
	SearchBaseURL string
	SearchAPIKey  string

	// Local media workspace and encoder binary.
	MediaDir  string
	FFmpegBin string

	PollInterval    time.Duration
	MaxPolls        int
	StaggerInterval time.Duration
	RetryAttempts   int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		VeoAPIKeys: collectVeoKeys(),
		VeoModel:   getEnv("VEO_MODEL", "veo-3.1-fast-generate-preview"),
		VeoBaseURL: getEnv("VEO_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		SearchBaseURL: getEnv("SEARCH_BASE_URL", "https://www.googleapis.com/youtube/v3"),
		SearchAPIKey:  os.Getenv("SEARCH_API_KEY"),

		MediaDir:  getEnv("MEDIA_DIR", "./media"),
		FFmpegBin: getEnv("FFMPEG_BIN", "ffmpeg"),

		PollInterval:    time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 8)),
		MaxPolls:        getEnvInt("MAX_POLLS", 45),
		StaggerInterval: time.Second * time.Duration(getEnvInt("STAGGER_INTERVAL_SECONDS", 6)),
		RetryAttempts:   getEnvInt("RETRY_ATTEMPTS", 3),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// collectVeoKeys gathers VEO_API_KEY plus numbered overflow keys, falling
// back to GEMINI_API_KEY when none are set. Blank slots are skipped so a
// single-key deployment still yields a valid pool.
func collectVeoKeys() []string {
	var keys []string
	if k := os.Getenv("VEO_API_KEY"); k != "" {
		keys = append(keys, k)
	}
	for i := 2; i <= 9; i++ {
		if k := os.Getenv(fmt.Sprintf("VEO_API_KEY%d", i)); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
