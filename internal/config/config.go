package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	MongoURI    string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB     string        `envconfig:"MONGO_DB" default:"chatapp"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	CookieName  string        `envconfig:"AUTH_COOKIE" default:"auth_token"`
	AllowOrigin string        `envconfig:"ALLOW_ORIGIN" default:"http://localhost:5173"`
}

// New loads configuration from the environment, reading a .env file first
// if one is present.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to process configuration: %v", err)
	}
	return &cfg
}
