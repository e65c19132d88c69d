package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppName string `mapstructure:"APP_NAME"`
	Server  struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type     string `mapstructure:"TYPE"`
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		DBName   string `mapstructure:"DBNAME"`
		User     string `mapstructure:"USER"`
		Password string `mapstructure:"PASSWORD"`
		SSLMode  string `mapstructure:"SSLMODE"`
		Timezone string `mapstructure:"TIMEZONE"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Session struct {
		CookieName string        `mapstructure:"COOKIE_NAME"`
		TTL        time.Duration `mapstructure:"TTL"`
		Secure     bool          `mapstructure:"SECURE"`
	} `mapstructure:"SESSION"`
	Minio struct {
		Endpoint   string `mapstructure:"ENDPOINT"`
		AccessKey  string `mapstructure:"ACCESS_KEY"`
		SecretKey  string `mapstructure:"SECRET_KEY"`
		Secure     bool   `mapstructure:"SECURE"`
		BucketName string `mapstructure:"BUCKET_NAME"`
	} `mapstructure:"MINIO"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "retailops-dashboard")
	v.SetDefault("HTTP_SERVER.ADDR", ":8080")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", time.Minute)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("SESSION.COOKIE_NAME", "session")
	v.SetDefault("SESSION.TTL", 7*24*time.Hour)

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional, env vars can carry the whole config.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		zap.L().Warn("no config file found, using env and defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
