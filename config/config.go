package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Request  RequestConfig  `mapstructure:"request"`
	Export   ExportConfig   `mapstructure:"export"`
}

type ServerConfig struct {
	ListenHost string `mapstructure:"listen_host"`
	ListenPort int    `mapstructure:"listen_port"`
}

type DatabaseConfig struct {
	Path               string `mapstructure:"path"`
	ConnectionPoolSize int    `mapstructure:"connection_pool_size"`
}

type RequestConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

type ExportConfig struct {
	Format      string `mapstructure:"format"`
	PrettyPrint bool   `mapstructure:"pretty_print"`
}

func LoadConfig(configPath string) (*Config, error) {
	// Ensure ~/.restlab directory exists
	if err := ensureRestlabDirectory(); err != nil {
		return nil, fmt.Errorf("failed to create restlab directory: %w", err)
	}

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.restlab")
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return getDefaultConfig(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func ensureRestlabDirectory() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	restlabDir := filepath.Join(homeDir, ".restlab")
	if err := os.MkdirAll(restlabDir, 0755); err != nil {
		return fmt.Errorf("failed to create restlab directory: %w", err)
	}

	return nil
}

func setDefaults() {
	homeDir, _ := os.UserHomeDir()
	defaultDBPath := filepath.Join(homeDir, ".restlab", "restlab.db")

	viper.SetDefault("server.listen_host", "127.0.0.1")
	viper.SetDefault("server.listen_port", 8787)

	viper.SetDefault("database.path", defaultDBPath)
	viper.SetDefault("database.connection_pool_size", 10)

	viper.SetDefault("request.timeout_seconds", 30)
	viper.SetDefault("request.user_agent", "restlab/1.0")

	viper.SetDefault("export.format", "native")
	viper.SetDefault("export.pretty_print", true)
}

func getDefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBPath := filepath.Join(homeDir, ".restlab", "restlab.db")

	return &Config{
		Server: ServerConfig{
			ListenHost: "127.0.0.1",
			ListenPort: 8787,
		},
		Database: DatabaseConfig{
			Path:               defaultDBPath,
			ConnectionPoolSize: 10,
		},
		Request: RequestConfig{
			TimeoutSeconds: 30,
			UserAgent:      "restlab/1.0",
		},
		Export: ExportConfig{
			Format:      "native",
			PrettyPrint: true,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ListenPort <= 0 || c.Server.ListenPort > 65535 {
		return fmt.Errorf("invalid server listen_port: %d", c.Server.ListenPort)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Request.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request timeout_seconds: %d", c.Request.TimeoutSeconds)
	}

	switch c.Export.Format {
	case "native", "postman", "thunder":
	default:
		return fmt.Errorf("invalid export format: %s (must be 'native', 'postman', or 'thunder')", c.Export.Format)
	}

	return nil
}

func SaveConfig(config *Config, path string) error {
	viper.Set("server", config.Server)
	viper.Set("database", config.Database)
	viper.Set("request", config.Request)
	viper.Set("export", config.Export)

	if path == "" {
		path = "config.yaml"
	}

	return viper.WriteConfigAs(path)
}
