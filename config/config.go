package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KafkaConfig enables the kafka notification publisher when Brokers is set.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSqlite)
	v.SetDefault("database.dsn", "entity.db?_foreign_keys=on")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "entity-notifications")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ENTITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads defaults, then the optional config file at path, then ENTITY_*
// environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	// a comma separated ENTITY_KAFKA_BROKERS arrives as one element
	if len(config.Kafka.Brokers) == 1 && strings.Contains(config.Kafka.Brokers[0], ",") {
		config.Kafka.Brokers = strings.Split(config.Kafka.Brokers[0], ",")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

var gormLogLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSqlite:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return errors.WithHintf(errors.Newf("unknown database.driver %q", c.Database.Driver),
			"use %q or %q", DriverSqlite, DriverMemory)
	}
	if _, ok := gormLogLevels[strings.ToLower(c.Database.LogLevel)]; !ok {
		return errors.Newf("unknown database.log_level %q", c.Database.LogLevel)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Newf("unknown log.format %q", c.Log.Format)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.brokers is set")
	}
	return nil
}

func (c *Config) GormLogLevel() logger.LogLevel {
	if level, ok := gormLogLevels[strings.ToLower(c.Database.LogLevel)]; ok {
		return level
	}
	return logger.Warn
}

// SetupLogging configures the standard logrus logger.
func (c *Config) SetupLogging() error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return errors.Wrap(err, "log.level")
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	if c.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
