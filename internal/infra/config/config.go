package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	// E-paper API
	EpaperAPIURL   string
	EpaperAPIKey   string
	PublicBaseURL  string
	PublishTimeout time.Duration
	// ImageBaseURL is where this service serves stored clip images.
	ImageBaseURL string

	// Image fetching
	ImageFetchTimeout time.Duration
	ImageMaxBytes     int64
	ImageMaxPixels    int64
	ImageCacheSize    int
	// PageImageHosts may serve client-supplied page image URLs.
	PageImageHosts []string
	// ImageAllowPrivate lets image fetches reach private networks.
	ImageAllowPrivate bool
	ImageCacheTTL     time.Duration

	// Clip rendering
	WebPQuality        int
	DefaultStripHeight int
	Locale             string
	ShareCaption       string

	// Sessions and branding
	SessionTTL      time.Duration
	SessionCapacity int
	BrandingTTL     time.Duration

	// Share endpoint rate limit
	ShareRateLimit float64
	ShareBurst     int

	// Clip image storage; an empty DBHost stores images inline.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxConns int
	DBMinConns int

	// Observability
	OTelEnabled     bool
	OTelEndpoint    string
	OTelServiceName string
	OTelSampleRatio float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9300"),

		EpaperAPIURL:   strings.TrimRight(getEnv("EPAPER_API_URL", "http://localhost:8080"), "/"),
		EpaperAPIKey:   getSecret("EPAPER_API_KEY", "EPAPER_API_KEY_FILE", ""),
		PublicBaseURL:  strings.TrimRight(getEnvWithAlt("APP_BASE_URL", "VITE_APP_BASE_URL", ""), "/"),
		PublishTimeout: getEnvSeconds("CLIP_PUBLISH_TIMEOUT_SECONDS", 15),
		ImageBaseURL:   strings.TrimRight(getEnv("CLIP_IMAGE_BASE_URL", "http://localhost:9300"), "/"),

		ImageFetchTimeout: getEnvSeconds("IMAGE_FETCH_TIMEOUT_SECONDS", 10),
		ImageMaxBytes:     int64(getEnvInt("IMAGE_FETCH_MAX_BYTES", 25*1024*1024)),
		ImageMaxPixels:    int64(getEnvInt("IMAGE_FETCH_MAX_PIXELS", 40_000_000)),
		PageImageHosts:    getEnvList("PAGE_IMAGE_ALLOWED_HOSTS"),
		ImageAllowPrivate: getEnv("IMAGE_FETCH_ALLOW_PRIVATE", "false") == "true",
		ImageCacheSize:    getEnvInt("IMAGE_CACHE_SIZE", 64),
		ImageCacheTTL:     time.Duration(getEnvInt("IMAGE_CACHE_TTL_MINUTES", 30)) * time.Minute,

		WebPQuality:        getEnvInt("CLIP_WEBP_QUALITY", 90),
		DefaultStripHeight: getEnvInt("CLIP_STRIP_HEIGHT", 60),
		Locale:             getEnv("CLIP_LOCALE", "en"),
		ShareCaption:       getEnv("CLIP_SHARE_CAPTION", ""),

		SessionTTL:      time.Duration(getEnvInt("CLIP_SESSION_TTL_MINUTES", 30)) * time.Minute,
		SessionCapacity: getEnvInt("CLIP_SESSION_CAPACITY", 1024),
		BrandingTTL:     time.Duration(getEnvInt("BRANDING_TTL_MINUTES", 0)) * time.Minute,

		ShareRateLimit: getEnvFloat("CLIP_SHARE_RATE_PER_SECOND", 1),
		ShareBurst:     getEnvInt("CLIP_SHARE_BURST", 5),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "clip_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", ""),
		DBName:     getEnv("DB_NAME", "clip_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns: getEnvInt("DB_MIN_CONNS", 1),

		OTelEnabled:     getEnv("OTEL_ENABLED", "false") == "true",
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "epaper-clip"),
		OTelSampleRatio: getEnvFloat("OTEL_TRACES_SAMPLER_RATIO", 1.0),
	}
}

// DatabaseEnabled reports whether clip images go to PostgreSQL.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	// 1. Direct environment variable
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	// 2. File referenced by fileEnvKey
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
