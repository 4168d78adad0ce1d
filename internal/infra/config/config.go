// internal/infra/config/config.go
package config

import "os"

// Config holds the process-wide environment configuration.
type Config struct {
	Port string

	// Storefront API the checkout talks to (profile, stock validation,
	// orders, card/otp verification).
	APIBaseURL string

	// Cart persistence backend: "memory", "firestore", "redis" or
	// "postgres".
	CartStorage string

	// Firestore / Firebase.
	GCPCreds                 string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// Redis.
	RedisAddr     string
	RedisPassword string

	// Postgres.
	DatabaseURL string

	// Transactional mail. The API key may instead come from Secret
	// Manager under SENDGRID_API_KEY_SECRET.
	SendGridAPIKey       string
	SendGridAPIKeySecret string
	MailFrom             string
}

// Load reads the environment and returns the configuration.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "milkmaster-development")

	return &Config{
		Port:        getenvDefault("PORT", "8080"),
		APIBaseURL:  getenvDefault("API_BASE_URL", "http://localhost:5000"),
		CartStorage: getenvDefault("CART_STORAGE", "memory"),

		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecret: os.Getenv("SENDGRID_API_KEY_SECRET"),
		MailFrom:             getenvDefault("MAIL_FROM", "no-reply@milkmaster.example.com"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
