// Package config loads service settings from flags, environment, an optional
// config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RECEIPTS_SERVER_PORT.
const EnvPrefix = "RECEIPTS"

type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguage       string
	MaxFileSize       int64
	DatabasePath      string
	LogLevel          string
	LogFormat         string
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"port":       "server.port",
	"tessdata":   "ocr.tessdata_path",
	"lang":       "ocr.language",
	"db":         "database.path",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// LoadConfig reads configuration. configFile may be empty, in which case
// ./config.yaml is used if present. flags may be nil.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("server.port", "8080")
	v.SetDefault("ocr.tessdata_path", "/usr/share/tesseract-ocr/5/tessdata")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("upload.max_file_size", 10*1024*1024) // 10 MB
	v.SetDefault("database.path", "data/receipts.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names the service has always honoured.
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "SERVER_PORT")
	_ = v.BindEnv("ocr.tessdata_path", EnvPrefix+"_OCR_TESSDATA_PATH", "TESSDATA_PREFIX")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		ServerPort:        v.GetString("server.port"),
		TesseractDataPath: v.GetString("ocr.tessdata_path"),
		OCRLanguage:       v.GetString("ocr.language"),
		MaxFileSize:       v.GetInt64("upload.max_file_size"),
		DatabasePath:      v.GetString("database.path"),
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return errors.New("server port must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q (want text, json or logfmt)", c.LogFormat)
	}
	return nil
}

// SetupLogging configures the default logger from cfg.
func SetupLogging(cfg *Config) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "receipts",
	})
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	log.SetDefault(logger)
}
