package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
)

const (
	DefaultPort              = "8080"
	DefaultVoiceAIBaseURL    = "https://api.ultravox.ai"
	DefaultVoiceAIModel      = "fixie-ai/ultravox"
	DefaultVoiceAIVoice      = "Mark"
	DefaultVoiceAITemp       = 0.3
	DefaultCRMBaseURL        = "https://services.leadconnectorhq.com"
	DefaultCRMAPIVersion     = "2021-07-28"
	DefaultSMSMaxPrice       = 0.05
	DefaultDialRatePerSecond = 1.0
	DefaultDialBurst         = 1
	DefaultCallCacheTTL      = 60 * time.Minute

	// Timeouts for outbound dependencies
	MessagingTimeout = 30 * time.Second
	DialTimeout      = 30 * time.Second
	VoiceAITimeout   = 20 * time.Second
	CRMTimeout       = 15 * time.Second
)

// CallerConfig is built once at startup and passed to every component.
type CallerConfig struct {
	Port    string
	LogEnv  string
	BaseURL string // externally reachable URL of this service, no trailing slash

	// Twilio
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioPhoneNumber        string
	TwilioValidateSignatures bool
	MachineDetection         bool
	SMSMaxPrice              float64
	DialRatePerSecond        float64
	DialBurst                int

	// Voice AI
	VoiceAIAPIKey      string
	VoiceAIBaseURL     string
	VoiceAIModel       string
	VoiceAIVoice       string
	VoiceAITemperature float64
	ScriptPath         string // optional YAML override of the embedded script

	// CRM
	CRMAPIKey     string
	CRMLocationID string
	CRMBaseURL    string
	CRMAPIVersion string
	TagWebhookURL string // public target of the addContact tool

	// Redis call-attempt store (disabled when RedisHost is empty)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	CallCacheTTL  time.Duration
}

// LoadFromEnv reads the configuration from the environment. It never fails;
// call Validate before serving.
func LoadFromEnv() *CallerConfig {
	port := getEnvOrDefault("PORT", DefaultPort)

	cfg := &CallerConfig{
		Port:   port,
		LogEnv: getEnvOrDefault("LOG_ENV", "development"),

		TwilioAccountSID:         os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:          os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:        os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioValidateSignatures: getEnvAsBoolOrDefault("TWILIO_VALIDATE_SIGNATURES", false),
		MachineDetection:         getEnvAsBoolOrDefault("MACHINE_DETECTION", false),
		SMSMaxPrice:              getEnvAsFloatOrDefault("SMS_MAX_PRICE", DefaultSMSMaxPrice),
		DialRatePerSecond:        getEnvAsFloatOrDefault("DIAL_RATE_PER_SECOND", DefaultDialRatePerSecond),
		DialBurst:                getEnvAsIntOrDefault("DIAL_BURST", DefaultDialBurst),

		VoiceAIAPIKey:      os.Getenv("VOICE_AI_API_KEY"),
		VoiceAIBaseURL:     strings.TrimRight(getEnvOrDefault("VOICE_AI_BASE_URL", DefaultVoiceAIBaseURL), "/"),
		VoiceAIModel:       getEnvOrDefault("VOICE_AI_MODEL", DefaultVoiceAIModel),
		VoiceAIVoice:       getEnvOrDefault("VOICE_AI_VOICE", DefaultVoiceAIVoice),
		VoiceAITemperature: getEnvAsFloatOrDefault("VOICE_AI_TEMPERATURE", DefaultVoiceAITemp),
		ScriptPath:         os.Getenv("SCRIPT_PATH"),

		CRMAPIKey:     os.Getenv("CRM_API_KEY"),
		CRMLocationID: os.Getenv("CRM_LOCATION_ID"),
		CRMBaseURL:    strings.TrimRight(getEnvOrDefault("CRM_BASE_URL", DefaultCRMBaseURL), "/"),
		CRMAPIVersion: getEnvOrDefault("CRM_API_VERSION", DefaultCRMAPIVersion),
		TagWebhookURL: os.Getenv("TAG_WEBHOOK_URL"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CallCacheTTL:  time.Duration(getEnvAsIntOrDefault("CALL_CACHE_TTL_MINUTES", int(DefaultCallCacheTTL/time.Minute))) * time.Minute,
	}

	cfg.BaseURL = DetectBaseURL(port)
	return cfg
}

// Validate returns a *domain.ConfigurationError listing every missing
// credential. The server refuses to start on error.
func (c *CallerConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"TWILIO_ACCOUNT_SID", c.TwilioAccountSID},
		{"TWILIO_AUTH_TOKEN", c.TwilioAuthToken},
		{"TWILIO_PHONE_NUMBER", c.TwilioPhoneNumber},
		{"VOICE_AI_API_KEY", c.VoiceAIAPIKey},
		{"CRM_API_KEY", c.CRMAPIKey},
		{"CRM_LOCATION_ID", c.CRMLocationID},
	}

	cfgErr := &domain.ConfigurationError{}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			cfgErr.Missing = append(cfgErr.Missing, r.key)
		}
	}
	if c.SMSMaxPrice <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "SMS_MAX_PRICE")
	}
	if c.DialRatePerSecond <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "DIAL_RATE_PER_SECOND")
	}
	if c.DialBurst < 1 {
		cfgErr.Invalid = append(cfgErr.Invalid, "DIAL_BURST")
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// RedisEnabled reports whether the call-attempt store should be wired
func (c *CallerConfig) RedisEnabled() bool {
	return c.RedisHost != ""
}

// URL joins path onto BaseURL
func (c *CallerConfig) URL(path string) string {
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// DetectBaseURL resolves the public URL of this service. BASE_URL wins,
// then common hosting platform hints, then localhost.
func DetectBaseURL(port string) string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := os.Getenv("RENDER_EXTERNAL_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := os.Getenv("RAILWAY_PUBLIC_DOMAIN"); v != "" {
		return "https://" + strings.TrimRight(v, "/")
	}
	if v := os.Getenv("RAILWAY_STATIC_URL"); v != "" {
		return withScheme(v)
	}
	if v := os.Getenv("HEROKU_APP_NAME"); v != "" {
		return fmt.Sprintf("https://%s.herokuapp.com", v)
	}
	if v := os.Getenv("VERCEL_URL"); v != "" {
		return withScheme(v)
	}
	if v := os.Getenv("FLY_APP_NAME"); v != "" {
		return fmt.Sprintf("https://%s.fly.dev", v)
	}
	return "http://localhost:" + port
}

func withScheme(host string) string {
	host = strings.TrimRight(host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault gets environment variable as bool or returns default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
