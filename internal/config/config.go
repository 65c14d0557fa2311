// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EngineGemini = "gemini"
	EngineOpenAI = "openai"
)

type Config struct {
	Server   ServerConfig
	Engine   string
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey       string
	WhisperModel string
	ChatModel    string
}

type PipelineConfig struct {
	TempDir          string
	YtDlpPath        string
	FFmpegPath       string
	DownloadTimeout  time.Duration
	TranscodeTimeout time.Duration
	InferenceTimeout time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	downloadTimeout, err := getEnvDuration("DOWNLOAD_TIMEOUT", 3*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}
	transcodeTimeout, err := getEnvDuration("TRANSCODE_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCODE_TIMEOUT: %w", err)
	}
	inferenceTimeout, err := getEnvDuration("INFERENCE_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid INFERENCE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Engine: getEnv("ENGINE", EngineGemini),
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			WhisperModel: getEnv("OPENAI_WHISPER_MODEL", ""),
			ChatModel:    getEnv("OPENAI_CHAT_MODEL", ""),
		},
		Pipeline: PipelineConfig{
			TempDir:          getEnv("TEMP_DIR", "tmp"),
			YtDlpPath:        getEnv("YTDLP_PATH", "yt-dlp"),
			FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
			DownloadTimeout:  downloadTimeout,
			TranscodeTimeout: transcodeTimeout,
			InferenceTimeout: inferenceTimeout,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate enforces the startup contract: the selected engine must have
// its credential present before the service starts taking requests.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set when ENGINE=%s", EngineGemini)
		}
	case EngineOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set when ENGINE=%s", EngineOpenAI)
		}
	default:
		return fmt.Errorf("unknown ENGINE %q (want %s or %s)", c.Engine, EngineGemini, EngineOpenAI)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
