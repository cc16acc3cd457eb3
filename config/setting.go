package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type ServerConfig struct {
	Port        int    `koanf:"port" validate:"required,min=1,max=65535"`
	Concurrency int    `koanf:"concurrency" validate:"required,min=1"`
	BodyLimit   int    `koanf:"body_limit" validate:"required,min=1"`
	AppName     string `koanf:"app_name" validate:"required"`
}

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
	Fatal LogLevel = "fatal"
	Panic LogLevel = "panic"
)

type Module string

const (
	ModuleSearch     Module = "search"
	ModulePrompt     Module = "prompt"
	ModuleCompletion Module = "completion"
	ModuleQuery      Module = "query"
	ModuleAsk        Module = "ask"
	ModuleServer     Module = "server"
	ModuleSetting    Module = "setting"
	ModuleHealth     Module = "health"
)

// SearchConfig describes the Elasticsearch deployment and the single index
// queried per question.
type SearchConfig struct {
	Address            string `koanf:"address" validate:"required,url"`
	APIKey             string `koanf:"api_key"`
	Index              string `koanf:"index" validate:"required"`
	SemanticField      string `koanf:"semantic_field" validate:"required"`
	NumberOfFragments  int    `koanf:"number_of_fragments" validate:"min=1"`
	VerifyCertificates bool   `koanf:"verify_certificates"`
	// SourceFields maps an index name to the stored text field used when a
	// hit comes back without highlights.
	SourceFields map[string]string `koanf:"source_fields"`
}

type LocalLLMConfig struct {
	BaseURL     string  `koanf:"base_url" validate:"required,url"`
	Model       string  `koanf:"model" validate:"required"`
	Temperature float64 `koanf:"temperature" validate:"gte=0,lte=2"`
}

type OpenAIConfig struct {
	Key     string `koanf:"key"`
	Model   string `koanf:"model" validate:"required"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	LogLevel LogLevel       `koanf:"log_level" validate:"oneof=debug info warn error fatal panic"`
	Search   SearchConfig   `koanf:"search"`
	LocalLLM LocalLLMConfig `koanf:"local_llm"`
	OpenAI   OpenAIConfig   `koanf:"openai"`
}

const (
	// EnvSearchAPIKey and EnvOpenAIKey are read from the process environment
	// first and from the dotenv file second.
	EnvSearchAPIKey = "ES_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"

	envPrefix = "APP_"
)

// DotEnvPath is the dotenv file consulted for secrets.
var DotEnvPath = ".env"

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        5000,
			Concurrency: 256 * 1024,
			BodyLimit:   4 * 1024 * 1024,
			AppName:     "grounded-qa",
		},
		LogLevel: Info,
		Search: SearchConfig{
			Address:            "https://34.87.88.152:9243",
			Index:              "general-rules",
			SemanticField:      "content.semantic",
			NumberOfFragments:  1,
			VerifyCertificates: true,
			SourceFields: map[string]string{
				"general-rules": "content",
			},
		},
		LocalLLM: LocalLLMConfig{
			BaseURL:     "http://localhost:1234/v1/",
			Model:       "local-model",
			Temperature: 0.7,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-3.5-turbo",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, APP_ prefixed environment variables and finally the two secrets.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, err)
		}
	}

	// APP_SERVER__PORT -> server.port
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("%v: load env: %w", ModuleSetting, err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%v: unmarshal: %w", ModuleSetting, err)
	}

	secrets, err := loadSecrets(DotEnvPath)
	if err != nil {
		return nil, err
	}
	if v := secrets(EnvSearchAPIKey); v != "" {
		cfg.Search.APIKey = v
	}
	if v := secrets(EnvOpenAIKey); v != "" {
		cfg.OpenAI.Key = v
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadSecrets returns a lookup that prefers the process environment over the
// dotenv file, the same precedence python-dotenv uses without override.
func loadSecrets(path string) (func(string) string, error) {
	dk := koanf.New(".")
	if path != "" {
		if err := dk.Load(file.Provider(path), dotenv.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, err)
		}
	}
	return func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return dk.String(name)
	}, nil
}

// Validate runs struct validation and folds every failed field into a
// single error.
func Validate(cfg *Config) error {
	validate := validator.New()
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%v: config validation failed: %w", ModuleSetting, err)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v: config validation failed:", ModuleSetting))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("\n  - %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return errors.New(sb.String())
}
