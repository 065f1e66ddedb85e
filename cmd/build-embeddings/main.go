package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lawchat-backend/app"
	"lawchat-backend/config"
	"lawchat-backend/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// civilLawFamily is the default set of statutes embedded ahead of time
var civilLawFamily = []string{
	"民法",
	"民法總則施行法",
	"民法債編施行法",
	"民法物權編施行法",
	"民法親屬編施行法",
	"民法繼承編施行法",
	"涉外民事法律適用法",
	"民事訴訟法",
	"民事訴訟法施行法",
	"民事訴訟費用法",
	"強制執行法",
	"管收條例",
	"破產法",
	"破產法施行法",
	"非訟事件法",
	"公證法",
	"提存法",
	"民刑事訴訟卷宗滅失案件處理法",
	"消費者債務清理條例",
}

var (
	configPath  string
	lawNames    []string
	concurrency int
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "build-embeddings",
	Short: "Embed statutes and persist them for retrieval",
	Long: `Loads each statute from the persisted store or the national law database
dump, embeds every live article with the document task type and persists
the result. Statutes that are already embedded or abandoned are skipped.

Example:
  build-embeddings --law 民法 --law 民法債編施行法`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().StringSliceVar(&lawNames, "law", nil, "statute to embed (repeatable, default: the civil law family)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel embedding calls (default: from config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Corpus.EmbedConcurrency = concurrency
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	var failed []string
	for _, name := range selectLaws(lawNames) {
		law, err := application.Corpus.EnsureEmbedded(ctx, name)
		if err != nil {
			logger.Error("failed to embed law", zap.String("law", name), zap.Error(err))
			failed = append(failed, name)
			continue
		}
		logger.Info("law ready",
			zap.String("law", law.Name),
			zap.Bool("embedded", law.Embedded),
			zap.Bool("abandoned", law.IsAbandoned()),
		)
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to embed %d laws: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// selectLaws returns the requested statutes without blanks or repeats, or
// the civil law family when none are requested
func selectLaws(requested []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return civilLawFamily
	}
	return out
}
