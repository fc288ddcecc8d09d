package config

import (
	"errors"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	APIKey   EncryptedString `mapstructure:"api_key"`
	APIEmail string          `mapstructure:"api_email"`
}

var Cfg Config

func initViper() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	viper.SetConfigName(".dnsstcloudflare")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)

	viper.SetEnvPrefix("DNSST")
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_key")
	_ = viper.BindEnv("api_email")

	return nil
}

// LoadConfig populates Cfg from the config file and environment. Missing
// credentials are not an error here; whether they are required is the
// caller's decision (setup falls back to prompting, the client refuses to
// build).
func LoadConfig() error {
	if err := initViper(); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return viper.Unmarshal(&Cfg, viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc()))
}

func SaveConfig() error {
	if err := initViper(); err != nil {
		return err
	}

	viper.Set("api_key", Cfg.APIKey)
	viper.Set("api_email", Cfg.APIEmail)

	if err := viper.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return viper.SafeWriteConfig()
		}
		return err
	}
	return nil
}
