package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Port       int  `env:"PORT" envDefault:"8080"`
	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`

	// Diagnosis settings
	DiagnosisProvider string `env:"DIAGNOSIS_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-pro-preview-05-06"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Generation parameters
	MaxOutputTokens int     `env:"MAX_OUTPUT_TOKENS" envDefault:"2000"`
	Temperature     float32 `env:"TEMPERATURE" envDefault:"1"`
	TopP            float32 `env:"TOP_P" envDefault:"1"`
	Seed            int     `env:"SEED" envDefault:"0"`

	// Scratch space
	RecordingsDir string `env:"RECORDINGS_DIR" envDefault:"saved_recordings"`
	OutputsDir    string `env:"OUTPUTS_DIR" envDefault:"outputs"`

	// Renderer
	RendererPath string `env:"RENDERER_PATH" envDefault:"rrvideo"`
	BrowserPath  string `env:"BROWSER_PATH" envDefault:"google-chrome-stable"`

	// Janitor
	JanitorSchedule string        `env:"JANITOR_SCHEDULE" envDefault:"@every 30m"`
	JanitorMaxAge   time.Duration `env:"JANITOR_MAX_AGE" envDefault:"1h"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
