package config

import (
	"errors"
	"io/fs"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	File string // config file in use, empty when running on defaults and environment only
}

// New loads .env into the process environment, then reads config.yaml from the working directory
// when there is one. Environment variables override both.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	config := &Config{}
	if err := viper.ReadInConfig(); err != nil {
		var typeErr viper.ConfigFileNotFoundError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
		return config, nil
	}

	config.File = viper.ConfigFileUsed()
	return config, nil
}

// StringSlice reads a list setting. Environment values may separate items with commas, spaces or
// both; lists from config.yaml are used as they are.
func StringSlice(key string) []string {
	items := []string{}
	for _, v := range viper.GetStringSlice(key) {
		for _, item := range strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		}) {
			items = append(items, item)
		}
	}
	return items
}
