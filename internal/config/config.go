package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time is used for token lifetimes

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Every secret/TTL pair is independent: the
// verification pair also anchors password-reset tokens, whose signing key is
// derived from the verification secret and the user's current password hash.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	BackendHost string // public base URL used in verification/reset links

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	BcryptCost int // bcrypt cost for password hashing

	VerificationSecret string        // secret for email verification tokens
	VerificationTTL    time.Duration // lifetime of verification tokens and pending signups
	AccessSecret       string        // secret for access tokens
	AccessTTL          time.Duration // lifetime of access tokens
	RefreshSecret      string        // secret for refresh tokens
	RefreshTTL         time.Duration // lifetime of refresh tokens and sessions

	SMTPHost string // SMTP relay host (empty -> mails are logged instead)
	SMTPPort string // SMTP relay port
	SMTPUser string // SMTP username, also used as the From address
	SMTPPass string // SMTP password

	RabbitURL string // AMQP broker URL (empty -> mails are sent inline)
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is applied first if it
// exists.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // absence of a .env file is not an error

	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		BackendHost: must("BACKEND_HOST"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		BcryptCost: mustInt("BCRYPT_COST"),

		VerificationSecret: must("VERIFICATION_SECRET"),
		VerificationTTL:    time.Duration(mustInt("VERIFICATION_TTL_MIN")) * time.Minute,
		AccessSecret:       must("ACCESS_TOKEN_SECRET"),
		AccessTTL:          time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshSecret:      must("REFRESH_TOKEN_SECRET"),
		RefreshTTL:         time.Duration(mustInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: os.Getenv("SMTP_PORT"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),
	}
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
