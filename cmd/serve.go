package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sagkhr23/linkdin-auto-reply/internal/ai"
	"github.com/sagkhr23/linkdin-auto-reply/internal/ai/gemini"
	"github.com/sagkhr23/linkdin-auto-reply/internal/ai/ollama"
	"github.com/sagkhr23/linkdin-auto-reply/internal/logger"
	"github.com/sagkhr23/linkdin-auto-reply/internal/persona"
	"github.com/sagkhr23/linkdin-auto-reply/internal/secrets"
	"github.com/sagkhr23/linkdin-auto-reply/internal/server"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reply generation service",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default 127.0.0.1:8000)")
	serveCmd.Flags().StringP("provider", "p", "", "llm provider: ollama or gemini")

	viper.BindPFlag("service.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("service.ai.provider", serveCmd.Flags().Lookup("provider"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the generation service", zap.String("version", version))

	p, err := persona.Load(config.Service.Persona)
	if err != nil {
		logger.Fatal("loading persona", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.Service.AI, logger)
	if err != nil {
		logger.Fatal("creating llm provider", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              config.Service.Listen,
		Handler:           server.New(generator, p, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
	logger.Info("generation service stopped")
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", ai.ProviderOllama:
		var baseURL, model string
		if cfg.Ollama != nil {
			baseURL, model = cfg.Ollama.BaseURL, cfg.Ollama.Model
		}
		client := ollama.New(baseURL, model)
		if err := client.Ping(ctx); err != nil {
			log.Warn("ollama is not reachable yet", zap.Error(err))
		}
		logger.ForProvider(log, ai.ProviderOllama, client.Model()).Info("using llm provider")
		return client, nil

	case ai.ProviderGemini:
		if cfg.Gemini == nil {
			return nil, errors.New("service.ai.gemini section is required for the gemini provider")
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set service.ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		genLogger := logger.ForProvider(log, ai.ProviderGemini, cfg.Gemini.Model).With(
			zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
		)
		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}
		genLogger.Info("using llm provider")
		return generator, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
