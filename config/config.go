package config

import (
	"filadex/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion   string `mapstructure:"GENERAL_VERSION"`
	Environment      string `mapstructure:"ENVIRONMENT"`
	ServerPort       int    `mapstructure:"SERVER_PORT"`
	CorsAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`

	// Database: sqlite is the single-process default, postgres for server deployments
	DatabaseDriver   string `mapstructure:"DB_DRIVER"`
	DatabasePath     string `mapstructure:"DB_PATH"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     int    `mapstructure:"DB_PORT"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`

	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`

	SchedulerEnabled bool `mapstructure:"SCHEDULER_ENABLED"`

	// Optional printer vendor integration; disabled unless the base URL is set
	PrinterVendorBaseURL  string `mapstructure:"PRINTER_VENDOR_BASE_URL"`
	PrinterVendorAccount  string `mapstructure:"PRINTER_VENDOR_ACCOUNT"`
	PrinterVendorPassword string `mapstructure:"PRINTER_VENDOR_PASSWORD"`
	PrinterMQTTBroker     string `mapstructure:"PRINTER_MQTT_BROKER"`
	PrinterMQTTUsername   string `mapstructure:"PRINTER_MQTT_USERNAME"`
	PrinterMQTTPassword   string `mapstructure:"PRINTER_MQTT_PASSWORD"`
	PrinterSerial         string `mapstructure:"PRINTER_SERIAL"`
}

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	// Enable automatic environment variable reading first
	viper.AutomaticEnv()

	// Bind environment variables to config keys
	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "CORS_ALLOW_ORIGINS",
		"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"SCHEDULER_ENABLED",
		"PRINTER_VENDOR_BASE_URL", "PRINTER_VENDOR_ACCOUNT", "PRINTER_VENDOR_PASSWORD",
		"PRINTER_MQTT_BROKER", "PRINTER_MQTT_USERNAME", "PRINTER_MQTT_PASSWORD", "PRINTER_SERIAL",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(&config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"dbDriver", config.DatabaseDriver,
	)
	return ConfigInstance, nil
}

// InitConfig is an alias for New
func InitConfig() (Config, error) {
	return New()
}

func GetConfig() Config {
	return ConfigInstance
}

// PrinterIntegrationEnabled reports whether the optional vendor cloud poll is configured
func (c Config) PrinterIntegrationEnabled() bool {
	return c.PrinterVendorBaseURL != ""
}

func validateConfig(config *Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.DatabaseDriver == "" {
		config.DatabaseDriver = "sqlite"
	}

	switch config.DatabaseDriver {
	case "sqlite":
		if config.DatabasePath == "" {
			config.DatabasePath = "filadex.db"
		}
	case "postgres":
		if config.DatabaseHost == "" || config.DatabaseName == "" || config.DatabaseUser == "" {
			return log.Error(
				"Fatal error: postgres driver requires DB_HOST, DB_NAME and DB_USER",
				"host", config.DatabaseHost,
				"name", config.DatabaseName,
			)
		}
	default:
		return log.Error("Fatal error: unknown database driver", "driver", config.DatabaseDriver)
	}

	if config.PrinterVendorBaseURL != "" && config.PrinterVendorAccount == "" {
		return log.ErrMsg(
			"Fatal error: PRINTER_VENDOR_ACCOUNT required when PRINTER_VENDOR_BASE_URL is set",
		)
	}

	ConfigInstance = *config
	return nil
}
