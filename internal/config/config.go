// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every field also accepts an env-var override (env:"..." tags), so a
// container deployment can run without a YAML file edit.
package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing — better to crash at boot than to silently use a wrong default.
type Config struct {
	// Env controls log format and verbosity: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	// HTTPServer is embedded so its fields promote onto Config.
	HTTPServer `yaml:"http_server"`

	// Media configures the object-storage backend for profile photos.
	Media Media `yaml:"media"`

	// Notifier configures grade-notification publishing.
	Notifier Notifier `yaml:"notifier"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// Media holds the MinIO (S3-compatible) connection settings. The
// defaults match a stock local MinIO so development needs no setup
// beyond `minio server`.
type Media struct {
	Endpoint  string `yaml:"endpoint" env:"MEDIA_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MEDIA_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"MEDIA_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `yaml:"bucket" env:"MEDIA_BUCKET" env-default:"fotos-perfil"`
	UseSSL    bool   `yaml:"use_ssl" env:"MEDIA_USE_SSL" env-default:"false"`

	// PublicURL is the base under which uploaded objects are reachable;
	// the stored fotoPerfilUrl is PublicURL/bucket/objectName.
	PublicURL string `yaml:"public_url" env:"MEDIA_PUBLIC_URL" env-default:"http://localhost:9000"`
}

// Notifier holds notification-publishing settings. With an empty
// WebhookURL the service falls back to logging each notification instead
// of delivering it — the API keeps working without any broker around.
type Notifier struct {
	Topic      string `yaml:"topic" env:"NOTIFIER_TOPIC" env-default:"calificaciones-alumnos"`
	WebhookURL string `yaml:"webhook_url" env:"NOTIFIER_WEBHOOK_URL"`
}

// MustLoad reads, validates, and returns the application config.
//
// The "Must" prefix follows the Go convention: this function is allowed
// to fatal on failure, so if it returns, the config is valid.
func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return &cfg
}
