package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataURL           string
	FetchTimeout      time.Duration
	RefreshInterval   time.Duration
	KeyCandidatesFile string
	Location          *time.Location
	CategoryLocale    language.Tag

	DetailURL    string
	MapCenterLat float64
	MapCenterLon float64
	MapZoom      int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka publishing of every loaded collection.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "0s"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	loc, err := parseLocation(sharedcfg.EnvOrDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}

	locale, err := language.Parse(sharedcfg.EnvOrDefault("CATEGORY_LOCALE", "es"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATEGORY_LOCALE: %w", err)
	}

	lat, err := parseFloat("MAP_CENTER_LAT", "-38.4")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("MAP_CENTER_LON", "-63.6")
	if err != nil {
		return nil, err
	}
	zoom, err := strconv.Atoi(sharedcfg.EnvOrDefault("MAP_ZOOM", "5"))
	if err != nil || zoom < 0 {
		return nil, errors.New("invalid MAP_ZOOM")
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataURL:           sharedcfg.EnvOrDefault("DATA_URL", "data/hechos.json"),
		FetchTimeout:      fetchTimeout,
		RefreshInterval:   refreshInterval,
		KeyCandidatesFile: os.Getenv("KEY_CANDIDATES_FILE"),
		Location:          loc,
		CategoryLocale:    locale,
		DetailURL:         sharedcfg.EnvOrDefault("DETAIL_URL", "hecho-completo.html"),
		MapCenterLat:      lat,
		MapCenterLon:      lon,
		MapZoom:           zoom,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      brokers,
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "hechos-normalizados"),
	}

	if cfg.DataURL == "" {
		return nil, errors.New("DATA_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// LoadCandidates reads extra key spellings per canonical field from a YAML
// file:
//
//	lat: [coord_y, y]
//	categoria: [rubro]
//
// An empty path returns nil.
func LoadCandidates(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key candidates: %w", err)
	}
	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse key candidates %s: %w", path, err)
	}
	return extra, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseLocation(name string) (*time.Location, error) {
	if name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return loc, nil
}
