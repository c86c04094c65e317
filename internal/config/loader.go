package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/verdantlabs/herbarium/internal/db"
)

// Server holds HTTP server settings.
type Server struct {
	Addr           string
	AllowedOrigins []string
}

// ObjectStore holds settings for the S3-compatible image store.
type ObjectStore struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is prepended to object keys to form the stored image
	// URLs, e.g. a CDN origin in front of the bucket.
	PublicBaseURL string
}

// Config aggregates everything the server needs at startup.
type Config struct {
	Server      Server
	Database    db.Config
	ObjectStore ObjectStore
}

// Load reads config.yaml from configPath with environment overrides mapped
// under the HERBARIUM prefix (e.g. HERBARIUM_DATABASE.PASSWORD).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: db.DefaultConfig(),
		ObjectStore: ObjectStore{
			Region: "us-east-1",
			Bucket: "herbarium-images",
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("HERBARIUM")

	v.BindEnv("server.addr")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("objectstore.region")
	v.BindEnv("objectstore.endpoint")
	v.BindEnv("objectstore.bucket")
	v.BindEnv("objectstore.access_key")
	v.BindEnv("objectstore.secret_key")
	v.BindEnv("objectstore.public_base_url")

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine: defaults plus env vars carry a dev setup.
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("objectstore.region") {
		cfg.ObjectStore.Region = v.GetString("objectstore.region")
	}
	if v.IsSet("objectstore.endpoint") {
		cfg.ObjectStore.Endpoint = v.GetString("objectstore.endpoint")
	}
	if v.IsSet("objectstore.bucket") {
		cfg.ObjectStore.Bucket = v.GetString("objectstore.bucket")
	}
	if v.IsSet("objectstore.access_key") {
		cfg.ObjectStore.AccessKey = v.GetString("objectstore.access_key")
	}
	if v.IsSet("objectstore.secret_key") {
		cfg.ObjectStore.SecretKey = v.GetString("objectstore.secret_key")
	}
	if v.IsSet("objectstore.public_base_url") {
		cfg.ObjectStore.PublicBaseURL = v.GetString("objectstore.public_base_url")
	}

	return cfg, nil
}
