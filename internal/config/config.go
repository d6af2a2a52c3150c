package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server ServerConfig
	Docs   DocsConfig
	Engine EngineConfig
	Render RenderConfig
	Bridge BridgeConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DocsConfig points the bridge at the watched document service.
type DocsConfig struct {
	DocID   string
	BaseURL string
	Token   string
	Timeout int // seconds
}

// EngineConfig points the bridge at the render engine.
type EngineConfig struct {
	BaseURL string
	Timeout int // seconds, unary calls only; render streams are unbounded
}

// RenderConfig holds defaults applied to render requests.
type RenderConfig struct {
	DefaultSampleRate int
	DefaultBitDepth   int
	OutputDir         string
}

// BridgeConfig tunes the background loops.
type BridgeConfig struct {
	PollInterval       time.Duration
	WorkerPollInterval time.Duration
	StopTimeout        time.Duration
}

func Load() (*Config, error) {
	readSecret("DOCS_TOKEN")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("docs.doc_id", "DOCS_DOC_ID")
	_ = viper.BindEnv("docs.base_url", "DOCS_BASE_URL")
	_ = viper.BindEnv("docs.token", "DOCS_TOKEN")
	_ = viper.BindEnv("docs.timeout", "DOCS_TIMEOUT")
	_ = viper.BindEnv("engine.base_url", "ENGINE_BASE_URL")
	_ = viper.BindEnv("engine.timeout", "ENGINE_TIMEOUT")
	_ = viper.BindEnv("render.default_sample_rate", "RENDER_DEFAULT_SAMPLE_RATE")
	_ = viper.BindEnv("render.default_bit_depth", "RENDER_DEFAULT_BIT_DEPTH")
	_ = viper.BindEnv("render.output_dir", "RENDER_OUTPUT_DIR")
	_ = viper.BindEnv("bridge.poll_interval", "BRIDGE_POLL_INTERVAL")
	_ = viper.BindEnv("bridge.worker_poll_interval", "BRIDGE_WORKER_POLL_INTERVAL")
	_ = viper.BindEnv("bridge.stop_timeout", "BRIDGE_STOP_TIMEOUT")

	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("docs.base_url", "http://localhost:8090")
	viper.SetDefault("docs.timeout", 30)
	viper.SetDefault("engine.base_url", "http://localhost:50051")
	viper.SetDefault("engine.timeout", 30)
	viper.SetDefault("render.default_sample_rate", 48000)
	viper.SetDefault("render.default_bit_depth", 16)
	viper.SetDefault("render.output_dir", "/tmp")
	viper.SetDefault("bridge.poll_interval", "3s")
	viper.SetDefault("bridge.worker_poll_interval", "1s")
	viper.SetDefault("bridge.stop_timeout", "5s")

	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Docs: DocsConfig{
			DocID:   viper.GetString("docs.doc_id"),
			BaseURL: viper.GetString("docs.base_url"),
			Token:   viper.GetString("docs.token"),
			Timeout: viper.GetInt("docs.timeout"),
		},
		Engine: EngineConfig{
			BaseURL: viper.GetString("engine.base_url"),
			Timeout: viper.GetInt("engine.timeout"),
		},
		Render: RenderConfig{
			DefaultSampleRate: viper.GetInt("render.default_sample_rate"),
			DefaultBitDepth:   viper.GetInt("render.default_bit_depth"),
			OutputDir:         viper.GetString("render.output_dir"),
		},
		Bridge: BridgeConfig{
			PollInterval:       viper.GetDuration("bridge.poll_interval"),
			WorkerPollInterval: viper.GetDuration("bridge.worker_poll_interval"),
			StopTimeout:        viper.GetDuration("bridge.stop_timeout"),
		},
	}

	return cfg, nil
}
