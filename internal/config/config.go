package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	S3       S3Config       `mapstructure:"s3"`
	Strava   StravaConfig   `mapstructure:"strava"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Progress ProgressConfig `mapstructure:"progress"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration. Expiration is parsed from a
// duration string ("1h", "45m").
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// StravaConfig holds the OAuth application credentials for the Strava link.
type StravaConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// OpenAIConfig drives the session-script generator. An empty APIKey disables
// the LLM call; the service falls back to a canned script.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ProgressConfig tunes the streak computation.
type ProgressConfig struct {
	// StreakLookbackDays bounds the backward scan from today.
	StreakLookbackDays int `mapstructure:"streak_lookback_days"`
	// StrictStreak makes any non-trained day break the streak, including
	// planned rest days. Default false: rest-by-design is skipped.
	StrictStreak bool `mapstructure:"strict_streak"`
}

// AdminConfig seeds the coach account at startup when set.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Env override: server.address -> SERVER_ADDRESS, strava.client_id -> STRAVA_CLIENT_ID
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "coach_app")
	viper.SetDefault("jwt.expiration", "12h")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("progress.streak_lookback_days", 365)
	viper.SetDefault("progress.strict_streak", false)

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No config file; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
