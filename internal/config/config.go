package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	HTTPPort        string
	TokenExpiration time.Duration

	// LLM provider settings. An empty API key disables the agent: the webhook
	// falls back to a canned reply instead of calling the provider.
	AnthropicAPIKey string
	AnthropicModel  string

	// WhatsApp Business Cloud API settings.
	WhatsAppAPIToken      string
	WhatsAppAPIVersion    string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string

	// Agent tuning.
	AgentMaxToolIterations int
	AgentDisabledTools     []string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "default-super-secret-key") // CHANGE THIS IN PRODUCTION!
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	tokenExpStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	tokenExpHours, err := strconv.Atoi(tokenExpStr)
	if err != nil {
		log.Printf("Warning: Invalid JWT_EXPIRATION_HOURS '%s', using default 24h. Error: %v", tokenExpStr, err)
		tokenExpHours = 24
	}

	anthropicKey := getEnv("ANTHROPIC_API_KEY", "")
	if anthropicKey == "" {
		log.Println("Warning: ANTHROPIC_API_KEY is not set. The HR agent will reply with canned responses.")
	}

	maxIterStr := getEnv("AGENT_MAX_TOOL_ITERATIONS", "8")
	maxIter, err := strconv.Atoi(maxIterStr)
	if err != nil || maxIter < 1 {
		log.Printf("Warning: Invalid AGENT_MAX_TOOL_ITERATIONS '%s', using default 8.", maxIterStr)
		maxIter = 8
	}

	var disabledTools []string
	for _, name := range strings.Split(getEnv("AGENT_DISABLED_TOOLS", ""), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			disabledTools = append(disabledTools, name)
		}
	}

	cfg := &Config{
		HTTPPort:        port,
		JWTSecret:       jwtSecret,
		DatabaseURL:     dbURL,
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),

		AnthropicAPIKey: anthropicKey,
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),

		WhatsAppAPIToken:      getEnv("WHATSAPP_API_TOKEN", ""),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v22.0"),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", "testing"),

		AgentMaxToolIterations: maxIter,
		AgentDisabledTools:     disabledTools,
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, TokenExp=%s, Model=%s, MaxToolIterations=%d",
		cfg.HTTPPort, cfg.TokenExpiration, cfg.AnthropicModel, cfg.AgentMaxToolIterations)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
