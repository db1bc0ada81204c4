package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the pharmacy agent.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Mode: How the tool is exposed, over MCP stdio or as an interactive agent.
// - Port: The port for the monitoring server.
// - Maps: Google Maps credentials, the only setting the place finder itself reads.
// - Agent: Model, credentials and limits of the LLM agent.
// - State: Backend for the agent session state.
type Config struct {
	Env   string      `yaml:"env"   validate:"required"`        // Env is the current environment: local, development, production.
	Mode  string      `yaml:"mode"  validate:"oneof=mcp chat"`  // Mode selects the inbound surface.
	Port  int         `yaml:"port"  validate:"min=1,max=65535"` // Port is the monitoring server port.
	Maps  MapsConfig  `yaml:"maps"`                             // Maps holds the Google Maps settings.
	Agent AgentConfig `yaml:"agent"`                            // Agent holds the LLM agent settings.
	State StateConfig `yaml:"state"`                            // State holds the session store settings.
}

// MapsConfig holds the Google Maps platform settings.
type MapsConfig struct {
	APIKey  string `yaml:"api_key"`                            // APIKey is the Google Maps API key.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"` // BaseURL overrides the Maps API host.
}

// AgentConfig holds the LLM agent settings.
type AgentConfig struct {
	APIKey   string        `yaml:"api_key"`                      // APIKey is the Gemini API key.
	Model    string        `yaml:"model"     validate:"required"` // Model is the Gemini model name.
	MaxSteps int           `yaml:"max_steps" validate:"min=1"`    // MaxSteps bounds model turns per message.
	Timeout  time.Duration `yaml:"timeout"   validate:"gt=0"`     // Timeout bounds one user message.
}

// StateConfig selects and configures the session state backend.
type StateConfig struct {
	Backend     string         `yaml:"backend"      validate:"oneof=memory postgres redis"`
	Database    PostgresConfig `yaml:"postgres"`
	RedisURL    string         `yaml:"redis_url"    validate:"required_if=Backend redis"`
	RedisPrefix string         `yaml:"redis_prefix"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// MustLoad loads the configuration from .env files, an optional config file and
// the environment, and returns a validated Config struct. It panics on invalid input.
func MustLoad() *Config {
	if files := envFiles(); len(files) > 0 {
		_ = godotenv.Load(files...)
	} else {
		_ = godotenv.Load()
	}

	v := newViper()

	if file := v.GetString("ASCLEPIUS_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	healthPort, err := strconv.Atoi(v.GetString("ASCLEPIUS_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	maxSteps, err := strconv.Atoi(v.GetString("ASCLEPIUS_MAX_STEPS"))
	if err != nil {
		panic("failed to parse max steps from configuration, must be an integer types")
	}

	timeout, err := time.ParseDuration(v.GetString("ASCLEPIUS_AGENT_TIMEOUT"))
	if err != nil {
		panic("failed to parse agent timeout from configuration")
	}

	cfg := &Config{
		Env:  v.GetString("ASCLEPIUS_ENV"),
		Mode: v.GetString("ASCLEPIUS_MODE"),
		Port: healthPort,
		Maps: MapsConfig{
			APIKey:  v.GetString("GOOGLE_MAPS_API_KEY"),
			BaseURL: v.GetString("ASCLEPIUS_MAPS_BASE_URL"),
		},
		Agent: AgentConfig{
			APIKey:   v.GetString("GOOGLE_API_KEY"),
			Model:    v.GetString("ASCLEPIUS_MODEL"),
			MaxSteps: maxSteps,
			Timeout:  timeout,
		},
		State: StateConfig{
			Backend: v.GetString("ASCLEPIUS_STATE_BACKEND"),
			Database: PostgresConfig{
				Host:     v.GetString("DB_HOST"),
				Port:     v.GetString("DB_PORT"),
				User:     v.GetString("DB_USERNAME"),
				Password: v.GetString("DB_PASSWORD"),
				Name:     v.GetString("DB_NAME"),
			},
			RedisURL:    v.GetString("REDIS_URL"),
			RedisPrefix: v.GetString("ASCLEPIUS_REDIS_PREFIX"),
		},
	}

	if err = validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return cfg
}

// newViper returns a viper instance bound to the process environment with all defaults set.
func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ASCLEPIUS_ENV", "production")
	v.SetDefault("ASCLEPIUS_MODE", "mcp")
	v.SetDefault("ASCLEPIUS_HEALTH_PORT", "8080")
	v.SetDefault("ASCLEPIUS_MODEL", "gemini-2.5-flash")
	v.SetDefault("ASCLEPIUS_MAX_STEPS", "5")
	v.SetDefault("ASCLEPIUS_AGENT_TIMEOUT", "60s")
	v.SetDefault("ASCLEPIUS_STATE_BACKEND", "memory")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("ASCLEPIUS_REDIS_PREFIX", "asclepius")

	return v
}

// envFiles returns the comma separated list of dotenv files from ASCLEPIUS_ENV_FILE.
func envFiles() []string {
	raw := strings.TrimSpace(os.Getenv("ASCLEPIUS_ENV_FILE"))
	if raw == "" {
		return nil
	}

	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}

	return files
}
