package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/ai"
	"github.com/sagkhr23/linkdin-auto-reply/internal/browser"
	"github.com/sagkhr23/linkdin-auto-reply/internal/classifier"
	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/server"
)

func TestConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults(viper.GetViper())

	config, err := getConfig()
	require.NoError(t, err)
	require.Equal(t, generation.DefaultBaseURL, config.Generation.BaseURL)
	require.Equal(t, server.DefaultListen, config.Service.Listen)
	require.Equal(t, "ollama", config.Service.AI.Provider)
	require.Equal(t, browser.DefaultURLMatch, config.Browser.URLMatch)
	require.Equal(t, ".env", config.Service.Persona.DotEnv)
}

func TestConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults(viper.GetViper())

	path := filepath.Join(t.TempDir(), "linkdin-auto-reply.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  base-url: http://127.0.0.1:9000
browser:
  control-url: http://127.0.0.1:9222
  url-match: linkedin.com/messaging
selectors:
  thread:
    messages: .event
service:
  ai:
    provider: gemini
    gemini:
      model: gemini-2.5-pro
`), 0o600))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	config, err := getConfig()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9000", config.Generation.BaseURL)
	require.Equal(t, "http://127.0.0.1:9222", config.Browser.ControlURL)
	require.Equal(t, "linkedin.com/messaging", config.Browser.URLMatch)
	require.Equal(t, ".event", config.Selectors.Thread.Messages)
	require.Equal(t, ai.ProviderGemini, config.Service.AI.Provider)
	require.Equal(t, "gemini-2.5-pro", config.Service.AI.Gemini.Model)
	require.Equal(t, 3, config.Service.AI.Gemini.MaxRetries)
	require.Equal(t, server.DefaultListen, config.Service.Listen)
}

func TestLoadKeywordsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nheadline: [Sourcer]\ntext: [gig]\n"), 0o600))

	set, err := loadKeywords(&Config{KeywordsFile: path})
	require.NoError(t, err)
	require.Equal(t, []string{"sourcer"}, set.Headline)

	set, err = loadKeywords(&Config{})
	require.NoError(t, err)
	require.Contains(t, set.Headline, "recruiter")
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	_, err := newGenerator(t.Context(), &AIConfig{Provider: "openai"}, nil)
	require.EqualError(t, err, "unsupported ai provider: openai")

	_, err = newGenerator(t.Context(), &AIConfig{Provider: "gemini"}, nil)
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	require.True(t, strings.HasPrefix(out.String(), app+" version: unknown"))
}

func TestRunReplyReturnsConnectErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	config := &Config{
		Generation: &GenerationConfig{},
		Browser:    browser.Config{ControlURL: "ws://127.0.0.1:1/devtools/browser/none"},
		Selectors:  &SelectorsConfig{},
	}

	err := runReply(ctx, &cobra.Command{}, config, classifier.DefaultKeywords(), zap.NewNop())
	require.ErrorContains(t, err, "connecting to the browser")
}
