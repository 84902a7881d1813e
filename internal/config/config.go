// Package config loads runtime settings from an optional YAML file and
// PETQUEST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/petquest/internal/store"
)

const (
	AppName   = "petquest"
	EnvPrefix = "PETQUEST"

	DriverSQLite = "sqlite"
	DriverRedis  = "redis"

	DefaultPetTick = time.Hour
)

type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Redis RedisConfig `mapstructure:"redis"`
	Log   LogConfig   `mapstructure:"log"`
	Pet   PetConfig   `mapstructure:"pet"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	DB     int    `mapstructure:"db"`
	Prefix string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type PetConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// Dir is the per-user directory holding the database, log and config file.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

func setDefaults(v *viper.Viper) {
	dir := Dir()
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = filepath.Join(dir, AppName+".db")
	}
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", dbPath)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", AppName+":")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, AppName+".log"))
	v.SetDefault("pet.tick_interval", DefaultPetTick)
}

// Load reads configuration. An empty path searches Dir() for config.yaml
// and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("store.driver %q: %w", c.Store.Driver, store.ErrUnknownDriver)
	}
	if c.Pet.TickInterval < time.Second {
		return fmt.Errorf("pet.tick_interval %s is too short", c.Pet.TickInterval)
	}
	return nil
}
