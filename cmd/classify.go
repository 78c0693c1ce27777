package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/classifier"
	"github.com/sagkhr23/linkdin-auto-reply/internal/logger"
	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <saved-conversation.html>",
	Short: "Extract and classify the latest message of a saved conversation page",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		classify(args[0])
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func classify(path string) {
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

	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("opening page", zap.Error(err))
	}
	defer f.Close()

	snapshot, err := thread.ParseSnapshot(f)
	if err != nil {
		logger.Fatal("parsing page", zap.String("path", path), zap.Error(err))
	}

	msg, ok := thread.NewExtractor(snapshot, config.Selectors.Thread, logger).Extract(context.Background())
	if !ok {
		logger.Info("no message found", zap.String("path", path))
		return
	}

	decision := classifier.New(keywords, logger).Classify(msg)
	headline, _ := msg.Headline()

	fmt.Printf("message:   %s\n", msg.Text)
	fmt.Printf("headline:  %s\n", headline)
	fmt.Printf("recruiter: %t (stage %s, keyword %q)\n", decision.Recruiter, decision.Stage, decision.Keyword)
}
