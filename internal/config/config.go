package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	OpenAI   OpenAIConfig   `json:"openai"`
	Chat     ChatConfig     `json:"chat"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type OpenAIConfig struct {
	APIKey       string `json:"api_key"`
	DefaultModel string `json:"default_model"`
}

// ChatConfig holds the tunables of the conversation context manager.
// They are passed explicitly into the assembler, summarizer and dispatcher
// at construction time rather than living as package-level constants.
type ChatConfig struct {
	RecentWindow        int    `json:"recent_window"`
	SummarizeThreshold  int    `json:"summarize_threshold"`
	SummarizeBatchSize  int    `json:"summarize_batch_size"`
	MinBatchToSummarize int    `json:"min_batch_to_summarize"`
	DefaultModel        string `json:"default_model"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".tapverse"))
	}

	// Set defaults
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "tapverse")
	viper.SetDefault("database.database", "tapverse")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("openai.default_model", "gpt-4o-mini")
	viper.SetDefault("chat.recent_window", 15)
	viper.SetDefault("chat.summarize_threshold", 20)
	viper.SetDefault("chat.summarize_batch_size", 10)
	viper.SetDefault("chat.min_batch_to_summarize", 5)
	viper.SetDefault("chat.default_model", "gpt-4o-mini")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := defaultConfig()
			loadEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 3001,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "tapverse",
			Password: "",
			Database: "tapverse",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		OpenAI: OpenAIConfig{
			DefaultModel: "gpt-4o-mini",
		},
		Chat: ChatConfig{
			RecentWindow:        15,
			SummarizeThreshold:  20,
			SummarizeBatchSize:  10,
			MinBatchToSummarize: 5,
			DefaultModel:        "gpt-4o-mini",
		},
	}
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("TAPVERSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if host := os.Getenv("TAPVERSE_HOST"); host != "" {
		cfg.Server.Host = host
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPass := os.Getenv("REDIS_PASSWORD"); redisPass != "" {
		cfg.Redis.Password = redisPass
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.OpenAI.APIKey = apiKey
	}
}
