// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Process ProcessConfig `yaml:"process" mapstructure:"process"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend. The pair source, address
// store and pair sink all live on the same instance.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProcessConfig configures the batch processor.
type ProcessConfig struct {
	PairBatchSize        int `yaml:"pair_batch_size" mapstructure:"pair_batch_size"`
	UpdateBatchSize      int `yaml:"update_batch_size" mapstructure:"update_batch_size"`
	Workers              int `yaml:"workers" mapstructure:"workers"`
	StatementTimeoutSecs int `yaml:"statement_timeout_secs" mapstructure:"statement_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ZLV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("process.pair_batch_size", 50000)
	v.SetDefault("process.update_batch_size", 10000)
	v.SetDefault("process.workers", 6)
	v.SetDefault("process.statement_timeout_secs", 120)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
