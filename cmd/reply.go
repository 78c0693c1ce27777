package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/browser"
	"github.com/sagkhr23/linkdin-auto-reply/internal/classifier"
	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/injector"
	"github.com/sagkhr23/linkdin-auto-reply/internal/logger"
	"github.com/sagkhr23/linkdin-auto-reply/internal/pipeline"
	"github.com/sagkhr23/linkdin-auto-reply/internal/relay"
	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
)

const (
	PromptInsert  = "Insert reply"
	PromptDiscard = "Discard"
	replyTimeout  = 3 * time.Minute
)

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Draft a reply to the conversation open in the LinkedIn tab",
	Run: func(cmd *cobra.Command, _ []string) {
		reply(cmd)
	},
}

func init() {
	rootCmd.AddCommand(replyCmd)

	replyCmd.Flags().BoolP("confirm", "c", false, "show the drafted reply and ask before inserting it")
	replyCmd.Flags().String("control-url", "", "devtools url of a running browser (default launches one)")
	replyCmd.Flags().String("generation-url", "", "base url of the generation service")

	viper.BindPFlag("browser.control-url", replyCmd.Flags().Lookup("control-url"))
	viper.BindPFlag("generation.base-url", replyCmd.Flags().Lookup("generation-url"))
}

func reply(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	keywords, err := loadKeywords(config)
	if err != nil {
		logger.Fatal("loading recruiter keywords", zap.Error(err))
	}

	if err := runReply(ctx, cmd, config, keywords, logger); err != nil {
		logger.Fatal("drafting a reply", zap.Error(err))
	}
}

// runReply owns the browser session so it is closed on every return path.
func runReply(ctx context.Context, cmd *cobra.Command, config *Config, keywords *classifier.KeywordSet, logger *zap.Logger) error {
	session, err := browser.Connect(ctx, config.Browser, logger)
	if err != nil {
		return fmt.Errorf("connecting to the browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("closing the browser", zap.Error(err))
		}
	}()

	page, err := session.FindTab(ctx)
	if err != nil {
		return fmt.Errorf("finding the conversation tab (open a LinkedIn conversation first): %w", err)
	}

	backgroundBus := relay.NewBus("background", logger)
	pipeline.NewBackground(generation.New(config.Generation.BaseURL, logger), logger).Register(backgroundBus)

	deps := pipeline.Deps{
		Extractor:  thread.NewExtractor(page, config.Selectors.Thread, logger),
		Classifier: classifier.New(keywords, logger),
		Backend:    backgroundBus,
		Injector:   injector.New(page, browser.SystemClipboard{}, config.Selectors.Input, logger),
		Logger:     logger,
	}
	if confirm, _ := cmd.Flags().GetBool("confirm"); confirm {
		deps.Approve = confirmReply
	}

	contentBus := relay.NewBus("content", logger)
	pipeline.NewContent(deps).Register(contentBus)

	resp, err := contentBus.Send(ctx, relay.Message{Type: relay.TypeGenerateReply})
	if err != nil {
		return fmt.Errorf("sending to content: %w", err)
	}
	logger.Info("reply pipeline acknowledged", zap.Bool("ok", resp.OK))
	return nil
}

func loadKeywords(config *Config) (*classifier.KeywordSet, error) {
	if path := strings.TrimSpace(config.KeywordsFile); path != "" {
		return classifier.LoadKeywords(path)
	}
	return classifier.DefaultKeywords(), nil
}

func confirmReply(_ context.Context, reply, reason string) bool {
	fmt.Printf("\n--- drafted reply (%s) ---\n%s\n---\n\n", reason, reply)

	prompt := promptui.Select{
		Label: "Insert this reply?",
		Items: []string{PromptInsert, PromptDiscard},
	}
	_, action, err := prompt.Run()
	if err != nil {
		return false
	}
	return action == PromptInsert
}
