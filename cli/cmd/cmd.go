package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/malusev998/currency-rates/handler"
)

type Config struct {
	Ctx     context.Context
	Handler *handler.Handler
	Viper   *viper.Viper
	// EnvFiles are loaded into the environment before the config is read. Missing
	// files are ignored.
	EnvFiles []string

	debug      bool
	configFile string
}

func NewRootCommand(config *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rates-fetcher",
		Short:         "Exchange rates ingestion job",
		Version:       "v2.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&config.debug, "debug", false, "Force DEBUG log level")
	rootCmd.PersistentFlags().StringVar(&config.configFile, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(fetch(config))

	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute(config *Config) error {
	return NewRootCommand(config).Execute()
}

func (c *Config) load() (*viper.Viper, error) {
	// godotenv stops at the first missing file, so load them one by one.
	for _, file := range c.EnvFiles {
		_ = godotenv.Load(file)
	}

	v := c.Viper

	if v == nil {
		v = handler.NewViper()
	}

	if c.configFile != "" {
		absolutePath, err := filepath.Abs(c.configFile)

		if err != nil {
			return nil, fmt.Errorf("resolving config file path: %w", err)
		}

		v.SetConfigFile(absolutePath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", absolutePath, err)
		}
	}

	if c.debug {
		v.Set(handler.LogLevel, "DEBUG")
	}

	return v, nil
}
