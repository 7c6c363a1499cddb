package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Suggest   SuggestConfig
	Providers ProvidersConfig
	Seeder    SeederConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SuggestConfig holds settings for the place search pipeline.
// ShortQueryMax is the longest query, in runes, answered with an empty list
// and no lookup.
type SuggestConfig struct {
	ShortQueryMax   int
	MaxRequests     int
	Window          time.Duration
	Timeout         time.Duration
	HTTPTimeout     time.Duration
	ProviderURL     string
	Proxies         []string
	Country         string
	Language        string
	Limit           int
	Origin          string
	UserAgent       string
	TargetCountries []string
}

// ProvidersConfig holds air-quality data source settings
type ProvidersConfig struct {
	IQAirBaseURL  string
	IQAirKey      string
	IQAirInterval time.Duration
	WAQIBaseURL   string
	WAQIToken     string
	WAQIInterval  time.Duration
	Country       string
	Provinces     []string
}

// SeederConfig holds settings for snapshot import
type SeederConfig struct {
	DataDir   string
	BatchSize int
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "aqimap" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// Default upstream endpoints
var (
	DefaultProxies = []string{
		"https://api.allorigins.win/raw?url=",
		"https://proxy.cors.sh/",
		"https://cors-anywhere.herokuapp.com/",
	}
	DefaultTargetCountries = []string{"thailand", "ประเทศไทย"}
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "aqimap"),
			Password: getEnv("DB_PASSWORD", "aqimap_password"),
			Name:     getEnv("DB_NAME", "aqimap"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Suggest: SuggestConfig{
			ShortQueryMax:   getEnvAsInt("SUGGEST_SHORT_QUERY_MAX", 2),
			MaxRequests:     getEnvAsInt("SUGGEST_MAX_REQUESTS", 10),
			Window:          getEnvAsDuration("SUGGEST_WINDOW", time.Minute),
			Timeout:         getEnvAsDuration("SUGGEST_TIMEOUT", 5*time.Second),
			HTTPTimeout:     getEnvAsDuration("SUGGEST_HTTP_TIMEOUT", 30*time.Second),
			ProviderURL:     getEnv("SUGGEST_PROVIDER_URL", "https://nominatim.openstreetmap.org/search"),
			Proxies:         getEnvAsSlice("SUGGEST_PROXIES", DefaultProxies),
			Country:         getEnv("SUGGEST_COUNTRY", "Thailand"),
			Language:        getEnv("SUGGEST_LANGUAGE", "th"),
			Limit:           getEnvAsInt("SUGGEST_LIMIT", 10),
			Origin:          getEnv("SUGGEST_ORIGIN", "http://localhost:8080"),
			UserAgent:       getEnv("SUGGEST_USER_AGENT", "aqimap-api/1.0"),
			TargetCountries: getEnvAsSlice("SUGGEST_TARGET_COUNTRIES", DefaultTargetCountries),
		},
		Providers: ProvidersConfig{
			IQAirBaseURL:  getEnv("IQAIR_BASE_URL", "http://api.airvisual.com"),
			IQAirKey:      getEnv("IQAIR_API_KEY", ""),
			IQAirInterval: getEnvAsDuration("IQAIR_INTERVAL", 13*time.Second),
			WAQIBaseURL:   getEnv("WAQI_BASE_URL", "https://api.waqi.info"),
			WAQIToken:     getEnv("WAQI_TOKEN", ""),
			WAQIInterval:  getEnvAsDuration("WAQI_INTERVAL", time.Second),
			Country:       getEnv("PROVIDER_COUNTRY", "Thailand"),
			Provinces:     getEnvAsSlice("PROVIDER_PROVINCES", nil),
		},
		Seeder: SeederConfig{
			DataDir:   getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize: getEnvAsInt("SEEDER_BATCH_SIZE", 500),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("5s") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
