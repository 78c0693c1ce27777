package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sagkhr23/linkdin-auto-reply/internal/browser"
	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/injector"
	"github.com/sagkhr23/linkdin-auto-reply/internal/persona"
	"github.com/sagkhr23/linkdin-auto-reply/internal/server"
	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
)

const (
	app = "linkdin-auto-reply"
)

type Config struct {
	Generation *GenerationConfig `mapstructure:"generation"`
	Service    *ServiceConfig    `mapstructure:"service"`
	Browser    browser.Config    `mapstructure:"browser"`
	Selectors  *SelectorsConfig  `mapstructure:"selectors"`
	// KeywordsFile replaces the built-in recruiter keyword sets.
	KeywordsFile string `mapstructure:"keywords-file"`
}

type GenerationConfig struct {
	BaseURL string `mapstructure:"base-url"`
}

type SelectorsConfig struct {
	Thread thread.Selectors   `mapstructure:"thread"`
	Input  injector.Selectors `mapstructure:"input"`
}

type ServiceConfig struct {
	Listen  string          `mapstructure:"listen"`
	Persona persona.Sources `mapstructure:"persona"`
	AI      *AIConfig       `mapstructure:"ai"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Ollama   *OllamaConfig `mapstructure:"ollama"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "linkdin-auto-reply drafts replies to LinkedIn recruiter messages with a local LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("service.ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is linkdin-auto-reply.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generation.base-url", generation.DefaultBaseURL)
	v.SetDefault("service.listen", server.DefaultListen)
	v.SetDefault("service.ai.provider", "ollama")
	v.SetDefault("service.ai.gemini.max-retries", 3)
	v.SetDefault("browser.url-match", browser.DefaultURLMatch)

	sources := persona.DefaultSources()
	v.SetDefault("service.persona.dotenv", sources.DotEnv)
	v.SetDefault("service.persona.resume-file", sources.ResumeFile)
	v.SetDefault("service.persona.about-file", sources.AboutFile)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so only a broken config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Generation == nil {
		config.Generation = &GenerationConfig{BaseURL: generation.DefaultBaseURL}
	}
	if config.Service == nil {
		config.Service = &ServiceConfig{Listen: server.DefaultListen}
	}
	if config.Service.AI == nil {
		config.Service.AI = &AIConfig{}
	}
	if config.Selectors == nil {
		config.Selectors = &SelectorsConfig{
			Thread: thread.DefaultSelectors(),
			Input:  injector.DefaultSelectors(),
		}
	}

	return config, nil
}
