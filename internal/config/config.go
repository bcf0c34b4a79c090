package config // package config loads application configuration from environment variables

import (
	"log" // log reports configuration errors and halts execution
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Storage backends selectable with APP_STORAGE.
const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are only required when the
// MySQL storage backend is selected.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	Storage      string // "mysql" or "memory"
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign staff JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	HoldSeconds  int    // seat hold countdown per session
	MaxQuantity  int    // largest ticket quantity per session
	LogLevel     string // logrus level name
	LogFormat    string // "text" or "json"

	AMQPURL         string // broker URL for booking.confirmed events ("" disables publishing)
	ConsumerEnabled bool   // run the booking log consumer in-process
	BookingLogPath  string // file the consumer appends confirmed bookings to

	SeedUser     string // manager account created at startup in memory mode
	SeedPassword string
}

// Load reads a .env file when present, then builds Config from the
// environment.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // a missing .env is fine; real env vars win

	cfg := Config{
		Env:          envStr("APP_ENV", "dev"),                   // environment (dev/test/prod)
		Port:         envStr("APP_PORT", "8080"),                 // port to bind the HTTP server
		Storage:      envStr("APP_STORAGE", StorageMySQL),        // storage backend
		JWTSecret:    must("JWT_SECRET"),                         // secret used for signing JWTs
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),         // TTL for access tokens in minutes
		BcryptCost:   envInt("BCRYPT_COST", 10),                  // bcrypt cost factor
		HoldSeconds:  envInt("HOLD_SECONDS", 600),                // seat hold countdown
		MaxQuantity:  envInt("MAX_QUANTITY", 12),                 // ticket quantity cap
		LogLevel:     envStr("LOG_LEVEL", "info"),                // logrus level
		LogFormat:    envStr("LOG_FORMAT", "text"),               // text or json
		AMQPURL:      amqpURL(),                                  // broker URL

		ConsumerEnabled: envBool("BOOKING_CONSUMER_ENABLED", false),
		BookingLogPath:  envStr("BOOKING_LOG_PATH", "logs/booking.log"),

		SeedUser:     envStr("SEED_STAFF_USER", ""),
		SeedPassword: envStr("SEED_STAFF_PASSWORD", ""),
	}
	if cfg.Storage == StorageMySQL {
		cfg.DBUser = must("DB_USER")      // database user
		cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
		cfg.DBHost = must("DB_HOST")      // database host
		cfg.DBPort = must("DB_PORT")      // database port
		cfg.DBName = must("DB_NAME")      // database name
	}
	if cfg.HoldSeconds < 1 {
		log.Fatalf("invalid HOLD_SECONDS: %d", cfg.HoldSeconds)
	}
	if cfg.MaxQuantity < 1 {
		log.Fatalf("invalid MAX_QUANTITY: %d", cfg.MaxQuantity)
	}
	return cfg
}

// amqpURL reads RABBITMQ_URL, falling back to AMQP_URL.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
