package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
	Media    MediaConfig    `mapstructure:"media"`
}

// ServerConfig contains all HTTP-server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig contains settings for the job status/result cache.
// Addr may be empty, in which case the cache degrades to process-local
// in-memory storage.
type RedisConfig struct {
	Addr             string `mapstructure:"addr"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"                 validate:"gte=0"`
	ResultTTLSeconds int    `mapstructure:"result_ttl_seconds" validate:"gte=0"`
}

// AuthConfig contains authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=0,lte=31"`
}

// LLMConfig contains all settings for the AI extraction integration.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"       validate:"required"`
	ModelName          string `mapstructure:"model_name"           validate:"required"`
	PromptTemplatePath string `mapstructure:"prompt_template_path" validate:"required"`
	MaxRetries         int    `mapstructure:"max_retries"          validate:"gte=0"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds"  validate:"gte=0"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount              int `mapstructure:"worker_count"                validate:"gt=0"`
	QueueSize                int `mapstructure:"queue_size"                  validate:"gt=0"`
	StuckTaskAgeMinutes      int `mapstructure:"stuck_task_age_minutes"      validate:"gt=0"`
	StuckTaskIntervalMinutes int `mapstructure:"stuck_task_interval_minutes" validate:"gt=0"`
}

// MediaConfig contains settings for resolving WhatsApp media attachments
// through the 360dialog API.
type MediaConfig struct {
	D360APIKey             string `mapstructure:"d360_api_key"`
	DownloadTimeoutSeconds int    `mapstructure:"download_timeout_seconds" validate:"gte=0"`
}
