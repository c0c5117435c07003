package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	LogLevel  string
	LogPretty bool

	GatewayBaseURL     string
	GatewaySecretKey   string
	GatewayCallbackURL string
	GatewayCurrency    string
	GatewayTimeout     time.Duration
	GatewayRetryCount  int
	GatewayRetryWait   time.Duration
	BreakerFailures    int
	BreakerOpenTimeout time.Duration

	PlatformFeePercent float64

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	ReconcileSpec      string // cron spec for pending payment reconciliation
	ReconcileAfter     time.Duration
	CounterRebuildSpec string

	UploadDir string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "skillchain"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),

		GatewayBaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		GatewaySecretKey:   getEnv("PAYSTACK_SECRET_KEY", "defaultSecret"),
		GatewayCallbackURL: getEnv("PAYSTACK_CALLBACK_URL", "http://localhost:3000/payment/callback"),
		GatewayCurrency:    getEnv("PAYSTACK_CURRENCY", "NGN"),
		GatewayTimeout:     getEnvDuration("PAYSTACK_TIMEOUT", 15*time.Second),
		GatewayRetryCount:  getEnvInt("PAYSTACK_RETRY_COUNT", 2),
		GatewayRetryWait:   getEnvDuration("PAYSTACK_RETRY_WAIT", 500*time.Millisecond),
		BreakerFailures:    getEnvInt("PAYSTACK_BREAKER_FAILURES", 5),
		BreakerOpenTimeout: getEnvDuration("PAYSTACK_BREAKER_TIMEOUT", 30*time.Second),

		PlatformFeePercent: getEnvFloat("PLATFORM_FEE_PERCENT", 20),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@skillchain.dev"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "SkillChain"),

		ReconcileSpec:      getEnv("RECONCILE_SPEC", "*/10 * * * *"),
		ReconcileAfter:     getEnvDuration("RECONCILE_AFTER", 15*time.Minute),
		CounterRebuildSpec: getEnv("COUNTER_REBUILD_SPEC", "30 2 * * *"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GatewaySecretKey == "defaultSecret" {
		log.Println("Warning: Using default PAYSTACK_SECRET_KEY. Webhooks signed by the real gateway will be rejected.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will be logged, not sent.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}

// getEnvDuration accepts Go duration strings such as "15s" or "10m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
